package snapshot

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

var testFunctionPattern = regexp.MustCompile(`^(test_.*|.*_test)$`)

// ErrCallSiteNotFound means that a recording was attempted outside of any test function. This
// is a usage error in the calling code; it is never retried.
var ErrCallSiteNotFound = errors.New("impossible to find the calling test function")

// CallSiteError is returned when no test function could be found. It wraps ErrCallSiteNotFound.
type CallSiteError struct {
	Searched []string
}

func (e *CallSiteError) Error() string {
	if len(e.Searched) == 0 {
		return ErrCallSiteNotFound.Error()
	}
	return fmt.Sprintf("%s (searched: %s)", ErrCallSiteNotFound, strings.Join(e.Searched, " < "))
}

func (e *CallSiteError) Unwrap() error {
	return ErrCallSiteNotFound
}

// IsTestFunctionName returns true if the whole name is either "test_" followed by anything, or
// anything followed by "_test".
func IsTestFunctionName(name string) bool {
	return testFunctionPattern.MatchString(name)
}

// ResolveFromPath returns the innermost element of a logical call path that is a test function
// name. The path is ordered outermost first, as in a test ID.
func ResolveFromPath(path []string) (string, error) {
	for i := len(path) - 1; i >= 0; i-- {
		if IsTestFunctionName(path[i]) {
			return path[i], nil
		}
	}
	return "", &CallSiteError{Searched: reversed(path)}
}

// ResolveFromStack walks the goroutine's call stack from the caller of ResolveFromStack
// outward, and returns the bare name of the first function that is a test function name.
// skip is the number of additional frames to skip, as for runtime.Callers.
func ResolveFromStack(skip int) (string, error) {
	pcs := make([]uintptr, 32)
	for {
		n := runtime.Callers(skip+2, pcs)
		if n < len(pcs) {
			pcs = pcs[:n]
			break
		}
		pcs = make([]uintptr, len(pcs)*2)
	}

	var searched []string
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			name := bareFunctionName(frame.Function)
			if IsTestFunctionName(name) {
				return name, nil
			}
			searched = append(searched, name)
		}
		if !more {
			break
		}
	}
	return "", &CallSiteError{Searched: searched}
}

// bareFunctionName turns a fully qualified runtime name such as
// "example.com/pkg.(*Fixture).test_foo-fm" into "test_foo".
func bareFunctionName(qualified string) string {
	name := qualified
	if slash := strings.LastIndex(name, "/"); slash >= 0 {
		name = name[slash+1:]
	}
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

func reversed(path []string) []string {
	ret := make([]string, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		ret = append(ret, path[i])
	}
	return ret
}
