package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, data string) any {
	v, err := ParseResponse([]byte(data))
	require.NoError(t, err)
	return v
}

const routesResponse = `{
	"routes": [
		{"id": "route:1", "name": "Gare de l'Est – Nation"},
		{"id": "route:2", "is_frequence": false}
	],
	"pagination": {"total_result": 2, "items_per_page": 25, "start_page": 0},
	"links": [{"href": "https://api/v1/coverage/x/routes/{routes.id}", "templated": true}],
	"feed_publishers": [],
	"disruptions": null,
	"context": {"timezone": "Europe/Paris", "current_datetime": "20120615T080000"}
}`

func TestNewStoreRequiresBaseDir(t *testing.T) {
	_, err := NewStore("", nil)
	assert.True(t, errors.Is(err, ErrNoBaseDir))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	url := "/v1/coverage/x/routes?depth=2"
	id := NewRun().Identity("PtRefFixture", "test_basic_route", url)
	response := parse(t, routesResponse)

	returned, err := store.Save(id, url, response)
	require.NoError(t, err)
	assert.Equal(t, id, returned)

	record, err := ReadRecord(filepath.Join(store.BaseDir(), id.String()))
	require.NoError(t, err)
	assert.Equal(t, url, record.Query)
	assert.Equal(t, response, record.Response)

	loaded, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestLargeNumbersAreKeptExactly(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	id := Identity{Fixture: "F", Function: "test_big_ids", CallID: Digest("/ids")}
	response := parse(t, `{"n":12345678901234567891,"m":9007199254740993,"f":0.1000000000000000055511151231257827,"e":1e400}`)
	_, err = store.Save(id, "/ids", response)
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path(id))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"n": 12345678901234567891`)
	assert.Contains(t, string(data), `"m": 9007199254740993`)
	assert.Contains(t, string(data), `"f": 0.1000000000000000055511151231257827`)
	assert.Contains(t, string(data), `"e": 1e400`)

	loaded, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, response, loaded.Response)
	assert.Equal(t, json.Number("12345678901234567891"), loaded.Response.(map[string]any)["n"])
}

func TestSavingTheSameResponseGivesTheSameBytes(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	id := Identity{Fixture: "F", Function: "test_stable", CallID: Digest("/routes")}

	var first []byte
	for i := 0; i < 10; i++ {
		_, err := store.Save(id, "/routes", parse(t, routesResponse))
		require.NoError(t, err)
		data, err := os.ReadFile(store.Path(id))
		require.NoError(t, err)
		if first == nil {
			first = data
			continue
		}
		require.Equal(t, string(first), string(data), "save #%d", i+1)
	}
}

func TestSavedFileIsIndentedJSONWithSortedKeys(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	id := Identity{Fixture: "F", Function: "test_format", CallID: "abc"}
	_, err = store.Save(id, "/a?x=1&y=<2>", parse(t, `{"z":1,"a":{"c":true,"b":"<b>"}}`))
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path(id))
	require.NoError(t, err)
	assert.Equal(t, `{
  "query": "/a?x=1&y=<2>",
  "response": {
    "a": {
      "b": "<b>",
      "c": true
    },
    "z": 1
  }
}`, string(data))
}

func TestSaveCreatesMissingDirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "does", "not", "exist")
	store, err := NewStore(base, nil)
	require.NoError(t, err)

	id1 := Identity{Fixture: "NewFixture", Function: "test_one", CallID: Digest("/1")}
	_, err = store.Save(id1, "/1", "first")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(base, "NewFixture"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	id2 := Identity{Fixture: "NewFixture", Function: "test_two", CallID: Digest("/2")}
	_, err = store.Save(id2, "/2", "second")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(base, "NewFixture"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	id := Identity{Fixture: "F", Function: "test_overwrite", CallID: Digest("/x")}
	_, err = store.Save(id, "/x", "old value that is rather long")
	require.NoError(t, err)
	_, err = store.Save(id, "/x", json.Number("2"))
	require.NoError(t, err)

	record, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), record.Response)
}

func TestSaveRejectsNamesOutsideTheFixtureDirectory(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(filepath.Join(base, "responses"), nil)
	require.NoError(t, err)

	for _, id := range []Identity{
		{Fixture: "..", Function: "test_x", CallID: "1"},
		{Fixture: "F", Function: "test_../../escaped", CallID: "1"},
		{Fixture: "F/nested", Function: "test_x", CallID: "1"},
		{Fixture: "F", Function: `test_a\b`, CallID: "1"},
		{Fixture: "", Function: "test_x", CallID: "1"},
	} {
		_, err := store.Save(id, "/x", nil)
		assert.True(t, errors.Is(err, ErrInvalidName), "%+v", id)
	}
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written")
}

func TestConcurrentSavesIntoSameDirectory(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := "/v1/" + string(rune('a'+i))
			id := Identity{Fixture: "Shared", Function: "test_parallel", CallID: Digest(url)}
			_, err := store.Save(id, url, i)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestSaveFailsIfDirectoryIsAFile(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "Blocked"), []byte("x"), 0o644))
	store, err := NewStore(base, nil)
	require.NoError(t, err)

	_, err = store.Save(Identity{Fixture: "Blocked", Function: "test_x", CallID: "1"}, "/x", nil)
	assert.Error(t, err)
}

func TestReadRecordRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := ReadRecord(path)
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	v, err := ParseResponse([]byte("  \n"))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseResponse([]byte(`[1, "a", null]`))
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), "a", nil}, v)

	_, err = ParseResponse([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
	_, err = ParseResponse([]byte(`{"a":`))
	assert.Error(t, err)
}
