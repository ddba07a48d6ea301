package gamedata_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/gamedata"
	"github.com/cory-johannsen/pvp-damage/internal/testutil"
)

// upstream splits the fixture gamemaster into the three files served upstream.
func upstream(t *testing.T) map[string][]byte {
	t.Helper()
	raw, err := os.ReadFile(testutil.GamemasterPath())
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	return map[string][]byte{
		"/base.json":    []byte(`{"id": "gamemaster", "settings": {"partySize": 3}, "pokemon": [], "moves": []}`),
		"/pokemon.json": doc["pokemon"],
		"/moves.json":   doc["moves"],
	}
}

func serve(t *testing.T, files map[string][]byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func fetcher(srv *httptest.Server, logger *zap.Logger) *gamedata.Fetcher {
	return gamedata.NewFetcher(config.FetchConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, logger)
}

func TestFetch(t *testing.T) {
	srv, hits := serve(t, upstream(t))
	core, logs := observer.New(zap.InfoLevel)

	doc, err := fetcher(srv, zap.New(core)).Fetch(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, hits.Load())

	c, err := catalog.DecodeGamemaster(bytes.NewReader(doc))
	require.NoError(t, err)
	want := testutil.Catalog(t)
	assert.Equal(t, want.SpeciesCount(), c.SpeciesCount())
	assert.Equal(t, want.ChargedMoveCount(), c.ChargedMoveCount())

	var merged map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &merged))
	assert.JSONEq(t, `{"partySize": 3}`, string(merged["settings"]))

	require.Equal(t, 1, logs.FilterMessage("gamemaster fetched").Len())
}

func TestFetch_MissingPart(t *testing.T) {
	files := upstream(t)
	delete(files, "/moves.json")
	srv, _ := serve(t, files)

	_, err := fetcher(srv, nil).Fetch(context.Background())
	assert.ErrorContains(t, err, "moves.json")
	assert.ErrorContains(t, err, "404")
}

func TestFetch_InvalidGamemaster(t *testing.T) {
	files := upstream(t)
	files["/moves.json"] = []byte(`[{"moveId": "SPLASH"}]`)
	srv, _ := serve(t, files)

	_, err := fetcher(srv, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, catalog.ErrSchema)
}

func TestMerge(t *testing.T) {
	out, err := gamedata.Merge([]byte(`{"id": "gm"}`), []byte(`[1]`), []byte(`[]`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "gm", "pokemon": [1], "moves": []}`, string(out))

	_, err = gamedata.Merge([]byte(`[]`), []byte(`[]`), []byte(`[]`))
	assert.ErrorContains(t, err, "base.json")
	_, err = gamedata.Merge([]byte(`null`), []byte(`[]`), []byte(`[]`))
	assert.ErrorContains(t, err, "not a JSON object")
	_, err = gamedata.Merge([]byte(`{}`), []byte(`{}`), []byte(`[]`))
	assert.ErrorContains(t, err, "pokemon.json")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "gamemaster.json")
	require.NoError(t, gamedata.WriteFile(path, []byte(`{"a":1}`)))
	require.NoError(t, gamedata.WriteFile(path, []byte(`{"a":2}`)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
