package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/navitia/artemis/config"
	"github.com/navitia/artemis/framework"
)

type commandParams struct {
	configFile string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	overrides  map[string]any
}

func (c *commandParams) Read(args []string) bool {
	var url, responsePath, referencePath string
	var statusTimeout string

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&url, "url", "", "API root point of the service under test")
	fs.StringVar(&responsePath, "response-path", "", "directory where responses are recorded (RESPONSE_FILE_PATH)")
	fs.StringVar(&referencePath, "reference-path", "", "directory of the reference responses")
	fs.StringVar(&statusTimeout, "status-timeout", "", "how long to wait for the service to be up, e.g. 30s")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	flagKeys := map[string]string{
		"url":            config.KeyURL,
		"response-path":  config.KeyResponseFilePath,
		"reference-path": config.KeyReferenceFilePath,
		"status-timeout": config.KeyStatusTimeout,
	}
	values := map[string]string{
		"url":            url,
		"response-path":  responsePath,
		"reference-path": referencePath,
		"status-timeout": statusTimeout,
	}
	c.overrides = make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			c.overrides[key] = values[f.Name]
		}
	})
	return true
}
