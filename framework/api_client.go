package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

const defaultCallTimeout = time.Second * 30

// APIClient performs HTTP calls against the service under test.
type APIClient struct {
	rootURL    string
	httpClient *http.Client
	logger     Logger
}

// HTTPStatusError is returned by APIClient.Call when the service answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("service returned HTTP status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("service returned HTTP status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// NewAPIClient creates an APIClient for the service whose API root point is rootURL. If
// statusQueryTimeout is nonzero, it first waits until the root point answers with a
// successful status, so that tests do not start before the service is up.
func NewAPIClient(
	rootURL string,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*APIClient, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	c := &APIClient{
		rootURL:    strings.TrimSuffix(rootURL, "/"),
		httpClient: &http.Client{Timeout: defaultCallTimeout},
		logger:     debugLogger,
	}
	if statusQueryTimeout > 0 {
		if err := c.awaitService(statusQueryTimeout, startupOutput); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RootURL returns the API root point that relative URLs are resolved against.
func (c *APIClient) RootURL() string {
	return c.rootURL
}

// CompleteURL resolves a URL relative to the API root point. Absolute URLs are returned as-is.
func (c *APIClient) CompleteURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return c.rootURL + url
}

func (c *APIClient) awaitService(timeout time.Duration, output io.Writer) error {
	if output == nil {
		output = ioutil.Discard
	}
	fmt.Fprintf(output, "Connecting to service at %s", c.rootURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := c.httpClient.Get(c.rootURL)
		if err == nil {
			fmt.Fprintln(output)
			if resp.Body != nil {
				_, _ = io.Copy(ioutil.Discard, resp.Body)
				resp.Body.Close()
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("service returned status code %d", resp.StatusCode)
			}
			fmt.Fprintln(output, "Service is up")
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

// Call performs a GET request and returns the JSON response body exactly as received. An empty
// body is returned as null.
func (c *APIClient) Call(url string) (json.RawMessage, error) {
	completeURL := c.CompleteURL(url)
	c.logger.Printf("GET %s", completeURL)

	req, err := http.NewRequest("GET", completeURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	var data []byte
	if resp.Body != nil {
		data, err = ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading response body from %s: %w", completeURL, err)
		}
	}
	c.logger.Printf("Response status %d, %d bytes", resp.StatusCode, len(data))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: completeURL, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("malformed JSON response from %s", completeURL)
	}
	return json.RawMessage(data), nil
}
