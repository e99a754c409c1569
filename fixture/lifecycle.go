package fixture

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/navitia/artemis/compare"
	"github.com/navitia/artemis/framework"
	"github.com/navitia/artemis/snapshot"
)

// State is the position of a fixture in its lifecycle.
type State int

const (
	Unstarted State = iota
	Initialized
	ServicesRunning
	DataLoaded
	Deployed
	TestsExecuting
	TornDown
	// Failed means a setup hook returned an error. The fixture cannot be set up again.
	Failed
)

var stateNames = map[State]string{
	Unstarted:       "unstarted",
	Initialized:     "initialized",
	ServicesRunning: "services running",
	DataLoaded:      "data loaded",
	Deployed:        "deployed",
	TestsExecuting:  "tests executing",
	TornDown:        "torn down",
	Failed:          "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrFixtureFailed is returned by Setup if an earlier Setup of the same fixture failed.
var ErrFixtureFailed = errors.New("fixture setup already failed")

// Caller performs an HTTP call against the service under test and returns the JSON body as
// received. framework.APIClient is the usual implementation.
type Caller interface {
	Call(url string) (json.RawMessage, error)
}

// Environment holds the collaborators shared by the fixtures of a test run.
type Environment struct {
	Caller   Caller
	Store    *snapshot.Store
	Comparer compare.Comparer
	// ResolveCallSite finds the name of the test function making an API call. Defaults to
	// ResolveFromTestPath.
	ResolveCallSite CallSiteResolver
	Logger          framework.Logger
}

// Fixture is one instance of a group of tests that share the same deployed services and data.
// It is not safe for concurrent use.
type Fixture struct {
	name  string
	hooks Hooks
	env   Environment
	run   *snapshot.Run
	state State
}

// New creates a fixture. The name is used as the directory of its response files.
func New(name string, hooks Hooks, env Environment) *Fixture {
	if env.Logger == nil {
		env.Logger = framework.NullLogger()
	}
	if env.Comparer == nil {
		env.Comparer = compare.Nop
	}
	if env.ResolveCallSite == nil {
		env.ResolveCallSite = ResolveFromTestPath
	}
	return &Fixture{
		name:  name,
		hooks: hooks,
		env:   env,
		run:   snapshot.NewRun(),
	}
}

func (f *Fixture) Name() string { return f.name }

func (f *Fixture) State() State { return f.state }

func (f *Fixture) Logger() framework.Logger { return f.env.Logger }

// Init forgets every recorded call. It can be called any number of times.
func (f *Fixture) Init() {
	f.run.Reset()
	if f.state != Failed {
		f.state = Initialized
	}
}

// Setup initializes the fixture and then calls the bootstrap hooks in their fixed order. The
// first hook error stops the sequence and leaves the fixture in the Failed state.
func (f *Fixture) Setup() error {
	if f.state == Failed {
		return ErrFixtureFailed
	}
	f.Init()
	f.env.Logger.Printf("Initing the tests %s, let's deploy!", f.name)

	if err := f.invoke("run_tyr", f.hooks.RunTyr); err != nil {
		return err
	}
	for i, h := range f.hooks.RunAdditionalServices {
		if err := f.invoke(fmt.Sprintf("run_additional_service[%d]", i), h); err != nil {
			return err
		}
	}
	f.state = ServicesRunning

	if err := f.invoke("read_data", f.hooks.ReadData); err != nil {
		return err
	}
	f.state = DataLoaded

	if err := f.invoke("pop_krakens", f.hooks.PopKrakens); err != nil {
		return err
	}
	if err := f.invoke("pop_jormungandr", f.hooks.PopJormungandr); err != nil {
		return err
	}
	f.state = Deployed
	return nil
}

func (f *Fixture) invoke(slot string, h Hook) error {
	if h == nil {
		return nil
	}
	f.env.Logger.Printf("[DEBUG] Running %s for %s", slot, f.name)
	if err := h(f); err != nil {
		f.state = Failed
		return &HookError{Fixture: f.name, Slot: slot, Err: err}
	}
	return nil
}

// Teardown is called once after the tests of the fixture. The fixture ends up TornDown even
// if the teardown hook fails.
func (f *Fixture) Teardown() error {
	f.env.Logger.Printf("Tearing down the tests %s, time to clean up", f.name)
	var err error
	if f.hooks.Teardown != nil {
		if hookErr := f.hooks.Teardown(f); hookErr != nil {
			err = &HookError{Fixture: f.name, Slot: "teardown", Err: hookErr}
		}
	}
	f.state = TornDown
	return err
}

// Record names a response with the next identity for the given test function, and saves it.
// The response is a decoded document as returned by snapshot.ParseResponse.
func (f *Fixture) Record(function, url string, response any) (snapshot.Identity, error) {
	id := f.run.Identity(f.name, function, url)
	return f.env.Store.Save(id, url, response)
}
