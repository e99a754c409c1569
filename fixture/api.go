package fixture

import (
	"encoding/json"

	"github.com/navitia/artemis/framework"
	"github.com/navitia/artemis/snapshot"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// CallSiteResolver finds the name of the test function on whose behalf an API call is made.
type CallSiteResolver func(t *T) (string, error)

// ResolveFromTestPath uses the innermost element of the test ID that is a test function name.
func ResolveFromTestPath(t *T) (string, error) {
	return snapshot.ResolveFromPath(t.context.ID().Path)
}

// ResolveFromCallStack uses the innermost function on the goroutine's stack that is a test
// function name, for tests written as Go functions named like test_something.
func ResolveFromCallStack(t *T) (string, error) {
	return snapshot.ResolveFromStack(1)
}

// T represents a test or subtest of a fixture.
//
// It implements the same basic functionality as Go's testing.T, on top of the framework
// package's test context, so the assert and require packages can be used with it. Its API
// method is how tests call the service under test.
type T struct {
	context *framework.Context
	fixture *Fixture
	session *session
}

// session tracks the setup of a fixture during one RunTests.
type session struct {
	context *framework.Context
	started bool
	err     error
}

// RunTests runs the tests as a subtest named after the fixture. The fixture is set up when the
// first of its tests that is not excluded by the filter starts, and torn down at the end; a
// fixture whose tests are all excluded is never set up. If setup fails, the error is reported
// on the fixture and its remaining tests are skipped.
func (f *Fixture) RunTests(c *framework.Context, tests func(*T)) {
	c.Run(f.name, func(fc *framework.Context) {
		s := &session{context: fc}
		fc.Defer(func() {
			if !s.started || s.err != nil {
				return
			}
			if err := f.Teardown(); err != nil {
				fc.Errorf("teardown failed: %s", err)
			}
		})
		tests(&T{context: fc, fixture: f, session: s})
	})
}

// begin sets the fixture up if this is the first test of it to run, and stops the test if
// the fixture could not be set up.
func (t *T) begin() {
	s := t.session
	if !s.started {
		s.started = true
		if err := t.fixture.Setup(); err != nil {
			s.err = err
			s.context.Errorf("setup failed: %s", err)
		} else {
			t.fixture.state = TestsExecuting
		}
	}
	if s.err == nil {
		return
	}
	if t.context == s.context {
		t.context.FailNow()
	}
	t.context.SkipWithReason("setup of " + t.fixture.name + " failed")
}

func (t *T) Fixture() *Fixture { return t.fixture }

func (t *T) ID() framework.TestID { return t.context.ID() }

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T. If the name is a test
// function name, the subtest starts with fresh call numbering for that name. Names that could
// not be used in a file name, such as ones containing a slash, are reported as an error.
func (t *T) Run(name string, action func(*T)) {
	if err := snapshot.ValidateName(name); err != nil {
		t.Errorf("cannot run subtest: %s", err)
		return
	}
	t.context.Run(name, func(c *framework.Context) {
		sub := &T{context: c, fixture: t.fixture, session: t.session}
		sub.begin()
		if snapshot.IsTestFunctionName(name) {
			t.fixture.run.BeginTest(name)
		}
		action(sub)
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Defer schedules a function to be called at the end of the test.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// API calls the service under test, saves the response under the identity of this call, and
// compares it with its reference. Any failure fails the test immediately.
//
// The response is returned so that tests can make further assertions on it. Numbers in the
// returned value are float64; the recorded file and the comparison keep them exact.
func (t *T) API(url string) ldvalue.Value {
	t.begin()
	env := t.fixture.env

	function, err := env.ResolveCallSite(t)
	require.NoError(t, err)

	body, err := env.Caller.Call(url)
	require.NoError(t, err, "API call failed: %s", url)
	response, err := snapshot.ParseResponse(body)
	require.NoError(t, err, "malformed response from %s", url)

	id, err := t.fixture.Record(function, url, response)
	require.NoError(t, err)
	t.Debug("Recorded %s as %s", url, id)

	require.NoError(t, env.Comparer.Compare(response, id))

	var view ldvalue.Value
	if err := json.Unmarshal(body, &view); err != nil {
		t.Debug("Response of %s returned as null: %s", url, err)
		return ldvalue.Null()
	}
	return view
}
