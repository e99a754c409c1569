package artemistests

import (
	"github.com/navitia/artemis/fixture"
)

const journeysURL = "/v1/journeys?from=stop_area:SA1&to=stop_area:SA2&datetime=20120615T080000"

func DoJourneyTests(t *fixture.T) {
	t.Run("test_journey_simple", func(t *fixture.T) {
		t.API(journeysURL)
	})

	t.Run("test_journey_reversed_parameters", func(t *fixture.T) {
		// Same query with its parameters in another order is recorded separately.
		t.API("/v1/journeys?to=stop_area:SA2&from=stop_area:SA1&datetime=20120615T080000")
	})

	t.Run("test_journey_is_stable", func(t *fixture.T) {
		t.API(journeysURL)
		t.API(journeysURL)
	})

	t.Run("test_journey_datetime_represents", func(t *fixture.T) {
		for _, represents := range []string{"departure", "arrival"} {
			t.Run(represents, func(t *fixture.T) {
				t.API(journeysURL + "&datetime_represents=" + represents)
			})
		}
	})
}
