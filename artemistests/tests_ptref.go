package artemistests

import (
	"github.com/navitia/artemis/fixture"

	"github.com/stretchr/testify/assert"
)

const coverage = "/v1/coverage/default"

func DoPtRefTests(t *fixture.T) {
	t.Run("test_basic_route", func(t *fixture.T) {
		t.API(coverage + "/routes")
		t.API(coverage + "/lines")
	})

	t.Run("test_networks", func(t *fixture.T) {
		t.API(coverage + "/networks")
	})

	t.Run("test_stop_areas", func(t *fixture.T) {
		response := t.API(coverage + "/stop_areas?count=10")
		assert.False(t, response.GetByKey("stop_areas").IsNull(), "missing stop_areas")
	})

	t.Run("test_lines_by_code", func(t *fixture.T) {
		for _, code := range []string{"1", "2", "A"} {
			t.API(coverage + "/lines?filter=line.code=" + code)
		}
	})
}
