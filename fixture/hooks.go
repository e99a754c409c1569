package fixture

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
)

// Hook is one step of a fixture's setup or teardown. A nil Hook does nothing.
type Hook func(f *Fixture) error

// Hooks are the capability slots of a fixture, called by Setup in this order: RunTyr, each of
// RunAdditionalServices, ReadData, PopKrakens, PopJormungandr. Teardown is called by Teardown.
type Hooks struct {
	// RunTyr starts tyr, the conductor of the platform.
	RunTyr Hook
	// RunAdditionalServices starts the services that have to be active for all tests.
	RunAdditionalServices []Hook
	// ReadData runs the data readers and binarizes the data.
	ReadData Hook
	// PopKrakens launches the compute backends.
	PopKrakens Hook
	// PopJormungandr launches the front end.
	PopJormungandr Hook
	Teardown       Hook
}

// Override returns a copy of h where every slot that is set in o replaces the one in h.
func (h Hooks) Override(o Hooks) Hooks {
	ret := h
	if o.RunTyr != nil {
		ret.RunTyr = o.RunTyr
	}
	if o.RunAdditionalServices != nil {
		ret.RunAdditionalServices = o.RunAdditionalServices
	}
	if o.ReadData != nil {
		ret.ReadData = o.ReadData
	}
	if o.PopKrakens != nil {
		ret.PopKrakens = o.PopKrakens
	}
	if o.PopJormungandr != nil {
		ret.PopJormungandr = o.PopJormungandr
	}
	if o.Teardown != nil {
		ret.Teardown = o.Teardown
	}
	return ret
}

// HookError is returned by Setup or Teardown when a hook fails.
type HookError struct {
	Fixture string
	Slot    string
	Err     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s of fixture %s failed: %s", e.Slot, e.Fixture, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// FixtureEnvVar is set to the fixture name in the environment of commands run by CommandHook.
const FixtureEnvVar = "ARTEMIS_FIXTURE"

// CommandHook returns a Hook that runs an external command and waits for it to exit. The
// command's output goes to the fixture's logger.
func CommandHook(name string, args ...string) Hook {
	return func(f *Fixture) error {
		var line commandBuilder
		line.add(name)
		line.add(args...)
		f.Logger().Printf("Running command: %s", line)

		cmd := exec.Command(name, args...)
		cmd.Env = append(os.Environ(), FixtureEnvVar+"="+f.Name())
		out, err := cmd.CombinedOutput()
		for _, l := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			if l != "" {
				f.Logger().Printf("[DEBUG]   %s", l)
			}
		}
		if err != nil {
			return fmt.Errorf("command %s failed: %w", line, err)
		}
		return nil
	}
}

// CommandLineHook is like CommandHook, with the command and its arguments given as one slice
// as found in configuration. An empty slice gives a nil Hook.
func CommandLineHook(command []string) Hook {
	if len(command) == 0 {
		return nil
	}
	return CommandHook(command[0], command[1:]...)
}
