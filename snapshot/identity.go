package snapshot

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for fixture or test function names that cannot be used as one
// element of a file path.
var ErrInvalidName = errors.New("invalid name for a response file")

// ValidateName checks that a fixture or test function name stays within one path element: it
// must not be empty, contain a path separator, or be "." or "..".
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Identity is the name under which one API call is recorded, relative to the response
// directory.
type Identity struct {
	Fixture  string
	Function string
	// CallID is the digest of the URL, suffixed with _n if this is the nth identical call in
	// the same test function.
	CallID string
}

// String returns the relative path of the record, always with forward slashes.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%s_%s.json", id.Fixture, id.Function, id.CallID)
}

// Validate returns an error if the identity would not name a file directly inside the
// directory of its fixture.
func (id Identity) Validate() error {
	if err := ValidateName(id.Fixture); err != nil {
		return err
	}
	if err := ValidateName(id.Function); err != nil {
		return err
	}
	return ValidateName(id.CallID)
}

// Digest returns the hex MD5 of the exact text of a URL. No normalization is done: URLs that
// differ only in the order of their query parameters get different digests.
func Digest(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

type callKey struct {
	function string
	callID   string
}

// Run holds the call counters of one fixture instance. It is not safe for concurrent use; a
// fixture instance is driven by one goroutine at a time.
type Run struct {
	counters map[callKey]int
}

func NewRun() *Run {
	return &Run{counters: make(map[callKey]int)}
}

// Identity returns the identity of the next call to url from the given test function, and
// counts the call.
func (r *Run) Identity(fixture, function, url string) Identity {
	callID := Digest(url)
	key := callKey{function: function, callID: callID}
	if n, ok := r.counters[key]; ok {
		r.counters[key] = n + 1
		callID = callID + "_" + strconv.Itoa(n+1)
	} else {
		r.counters[key] = 1
	}
	return Identity{Fixture: fixture, Function: function, CallID: callID}
}

// BeginTest forgets the calls made by a previous test with the same function name, if any.
// Counters of other test functions are untouched.
//
// Numbering is scoped to one logical test: if two tests of the same fixture share a function
// name, the second one gets the same identities as the first and its files replace the first
// one's. Identities are only unique among the calls of a single test.
func (r *Run) BeginTest(function string) {
	for key := range r.counters {
		if key.function == function {
			delete(r.counters, key)
		}
	}
}

// Reset forgets all calls.
func (r *Run) Reset() {
	r.counters = make(map[callKey]int)
}

// Calls returns the number of distinct (function, URL) pairs seen so far.
func (r *Run) Calls() int {
	return len(r.counters)
}
