package leveling_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
	"github.com/cory-johannsen/pvp-damage/internal/testutil"
)

func TestFindMaxLevel_References(t *testing.T) {
	c := testutil.Catalog(t)
	tests := []struct {
		name    string
		species string
		ivs     stats.IVs
		cap     int
		level   stats.Level
		cp      int
	}{
		{"hundo azumarill great league", "azumarill", stats.Hundo, 1500, 36, 1497},
		{"zero azumarill is cap exempt", "azumarill", stats.IVs{}, 1500, 51, 0},
		{"hundo dialga great league", "dialga", stats.Hundo, 1500, 13, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ind, err := leveling.FindMaxLevel(testutil.MustSpecies(t, c, tc.species), tc.ivs, tc.cap)
			require.NoError(t, err)
			assert.Equal(t, tc.level, ind.Level())
			assert.LessOrEqual(t, ind.PowerCap(), tc.cap)
			if tc.cp != 0 {
				assert.Equal(t, tc.cp, ind.CP())
			}
		})
	}
}

func TestFindMaxLevel_NextLevelExceedsCap(t *testing.T) {
	c := testutil.Catalog(t)
	azumarill := testutil.MustSpecies(t, c, "azumarill")
	next := stats.MustIndividual(azumarill, 36.5, stats.Hundo)
	assert.Greater(t, next.PowerCap(), 1500)
}

func TestFindMaxLevel_NoValidLevel(t *testing.T) {
	c := testutil.Catalog(t)
	_, err := leveling.FindMaxLevel(testutil.MustSpecies(t, c, "mewtwo"), stats.Hundo, 10)
	assert.ErrorIs(t, err, leveling.ErrNoValidLevel)
}

func TestFindMaxLevel_InvalidIVs(t *testing.T) {
	c := testutil.Catalog(t)
	_, err := leveling.FindMaxLevel(testutil.MustSpecies(t, c, "mewtwo"), stats.IVs{Defense: 16}, 1500)
	assert.ErrorIs(t, err, stats.ErrInvalidIVs)
}

func TestFindMaxLevel_BoundsAndMaximality(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sp := &catalog.Species{ID: "x", Name: "X", Base: catalog.BaseStats{
			Attack:  float64(rapid.IntRange(1, 420).Draw(rt, "baseAtk")),
			Defense: float64(rapid.IntRange(1, 420).Draw(rt, "baseDef")),
			Stamina: float64(rapid.IntRange(1, 520).Draw(rt, "baseSta")),
		}}
		ivs := stats.IVsAt(rapid.IntRange(0, stats.IVCombinations-1).Draw(rt, "ivs"))
		capLimit := rapid.IntRange(500, 10000).Draw(rt, "cap")

		ind, err := leveling.FindMaxLevel(sp, ivs, capLimit)
		if err != nil {
			rt.Fatalf("FindMaxLevel: %v", err)
		}
		if ind.PowerCap() > capLimit {
			rt.Fatalf("level %s has CP %d over cap %d", ind.Level(), ind.PowerCap(), capLimit)
		}
		if next, ok := ind.Level().Next(); ok {
			above := stats.MustIndividual(sp, next, ivs)
			if above.PowerCap() <= capLimit {
				rt.Fatalf("level %s (CP %d) also fits cap %d", next, above.PowerCap(), capLimit)
			}
		}
	})
}

func TestEnumerate_Complete(t *testing.T) {
	c := testutil.Catalog(t)
	gfisk := testutil.MustSpecies(t, c, "stunfisk_galarian")
	r, err := leveling.Enumerate(gfisk, 1500)
	require.NoError(t, err)
	require.Equal(t, stats.IVCombinations, r.Len())
	assert.Equal(t, 1500, r.CapLimit())
	assert.Same(t, gfisk, r.Species())

	seen := make(map[stats.IVs]bool, stats.IVCombinations)
	for _, ind := range r.Individuals() {
		seen[ind.IVs()] = true
		assert.LessOrEqual(t, ind.PowerCap(), 1500)
	}
	assert.Len(t, seen, stats.IVCombinations)

	ind := r.At(stats.IVs{Attack: 4, Defense: 15, Stamina: 6})
	assert.Equal(t, stats.IVs{Attack: 4, Defense: 15, Stamina: 6}, ind.IVs())
	assert.Panics(t, func() { r.At(stats.IVs{Attack: -1}) })
}

func TestEnumerate_PropagatesNoValidLevel(t *testing.T) {
	c := testutil.Catalog(t)
	_, err := leveling.Enumerate(testutil.MustSpecies(t, c, "dialga"), 10)
	assert.ErrorIs(t, err, leveling.ErrNoValidLevel)

	e := leveling.NewEnumerator(4, true, nil)
	_, err = e.Enumerate(context.Background(), testutil.MustSpecies(t, c, "dialga"), 10)
	assert.ErrorIs(t, err, leveling.ErrNoValidLevel)
	assert.Equal(t, 0, e.CachedRosters())
}

func TestEnumerator_MatchesSequential(t *testing.T) {
	c := testutil.Catalog(t)
	azumarill := testutil.MustSpecies(t, c, "azumarill")
	want, err := leveling.Enumerate(azumarill, 1500)
	require.NoError(t, err)

	for _, workers := range []int{1, 3, 8, 64} {
		e := leveling.NewEnumerator(workers, false, nil)
		got, err := e.Enumerate(context.Background(), azumarill, 1500)
		require.NoError(t, err)
		assert.Equal(t, want.Individuals(), got.Individuals(), "workers=%d", workers)
	}
}

func TestEnumerator_CachesPerSpeciesFormAndCap(t *testing.T) {
	c := testutil.Catalog(t)
	machamp := testutil.MustSpecies(t, c, "machamp")
	e := leveling.NewEnumerator(4, true, zap.NewNop())
	ctx := context.Background()

	first, err := e.Enumerate(ctx, machamp, 1500)
	require.NoError(t, err)
	again, err := e.Enumerate(ctx, machamp, 1500)
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = e.Enumerate(ctx, machamp, 2500)
	require.NoError(t, err)
	shadow, err := e.Enumerate(ctx, catalog.WithShadow(machamp), 1500)
	require.NoError(t, err)
	assert.NotSame(t, first, shadow)
	assert.Equal(t, 3, e.CachedRosters())
}

func TestEnumerator_ConcurrentCallers(t *testing.T) {
	c := testutil.Catalog(t)
	mewtwo := testutil.MustSpecies(t, c, "mewtwo")
	e := leveling.NewEnumerator(4, true, nil)

	var wg sync.WaitGroup
	results := make([]*leveling.Roster, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := e.Enumerate(context.Background(), mewtwo, 2500)
			if err == nil {
				results[i] = r
			}
		}()
	}
	wg.Wait()
	for _, r := range results {
		require.NotNil(t, r)
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, e.CachedRosters())
}

func TestEnumerator_Idempotent(t *testing.T) {
	c := testutil.Catalog(t)
	serperior := testutil.MustSpecies(t, c, "serperior")
	e := leveling.NewEnumerator(2, false, nil)
	a, err := e.Enumerate(context.Background(), serperior, 2500)
	require.NoError(t, err)
	b, err := e.Enumerate(context.Background(), serperior, 2500)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Individuals(), b.Individuals())
}

func TestEnumerator_CancelledContext(t *testing.T) {
	c := testutil.Catalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := leveling.NewEnumerator(2, false, nil)
	_, err := e.Enumerate(ctx, testutil.MustSpecies(t, c, "garchomp"), 1500)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnumerator_LogsBuild(t *testing.T) {
	c := testutil.Catalog(t)
	core, logs := observer.New(zapcore.DebugLevel)
	e := leveling.NewEnumerator(2, true, zap.New(core))
	_, err := e.Enumerate(context.Background(), testutil.MustSpecies(t, c, "garchomp"), 2500)
	require.NoError(t, err)

	entries := logs.FilterMessage("roster enumerated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "garchomp", fields["species"])
	assert.Equal(t, int64(2500), fields["cap"])
}
