package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/navitia/artemis/artemistests"
	"github.com/navitia/artemis/compare"
	"github.com/navitia/artemis/config"
	"github.com/navitia/artemis/fixture"
	"github.com/navitia/artemis/framework"
	"github.com/navitia/artemis/snapshot"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	cfg, err := config.NewLoader(config.WithConfigFile(params.configFile)).Load(params.overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	client, err := framework.NewAPIClient(
		cfg.URL,
		cfg.StatusTimeout,
		framework.LoggerWithPrefix(mainDebugLogger, "[api] "),
		os.Stdout,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %s\n", err)
		os.Exit(1)
	}

	store, err := snapshot.NewStore(cfg.ResponseFilePath, framework.LoggerWithPrefix(mainDebugLogger, "[store] "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	var comparer compare.Comparer = compare.Nop
	if cfg.ReferenceFilePath != "" {
		comparer = compare.RefComparer{ReferenceDir: cfg.ReferenceFilePath}
	} else {
		fmt.Println("No reference directory configured, responses will only be recorded")
	}

	env := fixture.Environment{
		Caller:   client,
		Store:    store,
		Comparer: comparer,
		Logger:   newLifecycleLogger(os.Stdout, params.debugAll),
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := artemistests.RunTestSuite(
		env,
		hooksFromCommands(cfg.Commands),
		artemistests.AllFixtures,
		params.filters.AsFilter,
		testLogger,
	)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		os.Exit(1)
	}
}

func hooksFromCommands(c config.Commands) fixture.Hooks {
	hooks := fixture.Hooks{
		RunTyr:         fixture.CommandLineHook(c.Tyr),
		ReadData:       fixture.CommandLineHook(c.ReadData),
		PopKrakens:     fixture.CommandLineHook(c.Kraken),
		PopJormungandr: fixture.CommandLineHook(c.Jormungandr),
		Teardown:       fixture.CommandLineHook(c.Teardown),
	}
	for _, command := range c.AdditionalServices {
		if h := fixture.CommandLineHook(command); h != nil {
			hooks.RunAdditionalServices = append(hooks.RunAdditionalServices, h)
		}
	}
	return hooks
}

// newLifecycleLogger returns the logger that fixtures report their setup and teardown steps to.
// Lines tagged "[DEBUG]" are only shown with -debug-all.
func newLifecycleLogger(out io.Writer, verbose bool) framework.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "artemis",
		Level:  level,
		Output: out,
	}).StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})
}
