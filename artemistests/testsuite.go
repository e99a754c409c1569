package artemistests

import (
	"github.com/navitia/artemis/fixture"
	"github.com/navitia/artemis/framework"
)

// Definition describes a fixture of the suite. Its hooks take precedence over the hooks
// common to all fixtures.
type Definition struct {
	Name  string
	Hooks fixture.Hooks
	Tests func(*fixture.T)
}

// AllFixtures is the whole suite, in the order it is run.
var AllFixtures = []Definition{
	{Name: "PtRefFixture", Tests: DoPtRefTests},
	{Name: "JourneyFixture", Tests: DoJourneyTests},
}

// RunTestSuite runs every fixture in turn. Each fixture gets a fresh instance, so call
// numbering never carries over from one fixture to the next.
func RunTestSuite(
	env fixture.Environment,
	commonHooks fixture.Hooks,
	fixtures []Definition,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		for _, d := range fixtures {
			f := fixture.New(d.Name, commonHooks.Override(d.Hooks), env)
			f.RunTests(c, d.Tests)
		}
	})
}
