package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
)

// testdataDir returns the absolute path of this package's testdata directory.
func testdataDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata")
}

// GamemasterPath returns the path of the fixture gamemaster document.
func GamemasterPath() string {
	return filepath.Join(testdataDir(), "gamemaster.json")
}

// LeaguesDir returns the directory holding fixture league rosters.
func LeaguesDir() string {
	return filepath.Join(testdataDir(), "leagues")
}

// Catalog loads the fixture gamemaster.
//
// Postcondition: Returns a populated Catalog or fails the test.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.LoadGamemaster(GamemasterPath())
	require.NoError(t, err)
	return c
}

// MustSpecies resolves a species id against c, failing the test on error.
func MustSpecies(t testing.TB, c *catalog.Catalog, id string) *catalog.Species {
	t.Helper()
	s, err := c.SpeciesByID(id)
	require.NoError(t, err)
	return s
}
