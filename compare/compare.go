// Package compare checks recorded responses against reference response files.
//
// A reference file has the same format and the same relative name as the response files
// written by the snapshot package. Only the "response" fields are compared.
package compare

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/navitia/artemis/snapshot"

	difflib "github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// Comparer checks a response against the reference for an identity. It returns nil if the
// response matches. The response is a decoded document as returned by snapshot.ParseResponse.
type Comparer interface {
	Compare(response any, id snapshot.Identity) error
}

// ComparerFunc allows a function to be used as a Comparer.
type ComparerFunc func(any, snapshot.Identity) error

func (f ComparerFunc) Compare(response any, id snapshot.Identity) error {
	return f(response, id)
}

// Nop accepts every response. It is used when no reference directory is configured, so that
// a run only records responses.
var Nop Comparer = ComparerFunc(func(any, snapshot.Identity) error { return nil })

// MissingReferenceError means there is no reference file for a recorded call.
type MissingReferenceError struct {
	Identity snapshot.Identity
	Path     string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("no reference file for %s (expected at %s)", e.Identity, e.Path)
}

// MismatchError means the response differs from the reference. Diff is a unified diff from
// the reference to the actual response.
type MismatchError struct {
	Identity snapshot.Identity
	Diff     string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("response does not match reference %s:\n%s", e.Identity, e.Diff)
}

// RefComparer compares responses with the reference files found under ReferenceDir.
type RefComparer struct {
	ReferenceDir string
}

func (c RefComparer) Compare(response any, id snapshot.Identity) error {
	path := filepath.Join(c.ReferenceDir, filepath.FromSlash(id.String()))
	ref, err := snapshot.ReadRecord(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingReferenceError{Identity: id, Path: path}
		}
		return err
	}
	if Equal(ref.Response, response) {
		return nil
	}
	diff, err := UnifiedDiff("reference/"+id.String(), "response/"+id.String(), ref.Response, response)
	if err != nil {
		return err
	}
	return &MismatchError{Identity: id, Diff: diff}
}

// UnifiedDiff renders both values as indented JSON with sorted keys, the way response files
// are written, and returns a unified diff between them.
func UnifiedDiff(fromName, toName string, from, to any) (string, error) {
	a, err := indented(from)
	if err != nil {
		return "", err
	}
	b, err := indented(to)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromName,
		ToFile:   toName,
		Context:  diffContextLines,
	})
}

func indented(v any) (string, error) {
	data, err := snapshot.MarshalIndented(v)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n") + "\n", nil
}
