package framework

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	failedLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	skippedLabel = color.New(color.FgYellow).SprintFunc()
	passedLabel  = color.New(color.FgGreen).SprintFunc()
)

// ConsoleTestLogger writes test progress to the console. Debug output captured for a test is
// written only when the corresponding flag allows it.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	Output               io.Writer
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}
	return c.Output
}

func (c *ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	if failed {
		fmt.Fprintf(c.out(), "  %s: %s\n", failedLabel("FAILED"), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.out(), "  %s: %s\n", skippedLabel("SKIPPED"), id)
	} else {
		fmt.Fprintf(c.out(), "  %s: %s (%s)\n", skippedLabel("SKIPPED"), id, reason)
	}
}

// PrintResults writes a summary of the test run.
func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		fmt.Fprintf(out, "%s (%d tests)\n", passedLabel("All tests passed"), len(results.Tests))
		return
	}
	fmt.Fprintf(out, "%s\n", failedLabel(fmt.Sprintf("FAILED TESTS (%d):", len(results.Failures))))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
	}
}
