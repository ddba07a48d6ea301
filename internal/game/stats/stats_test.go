package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

var dialga = &catalog.Species{
	Dex:  483,
	ID:   "dialga",
	Name: "Dialga",
	Base: catalog.BaseStats{Attack: 275, Defense: 211, Stamina: 205},
}

var mewtwo = &catalog.Species{
	Dex:  150,
	ID:   "mewtwo",
	Name: "Mewtwo",
	Base: catalog.BaseStats{Attack: 300, Defense: 182, Stamina: 214},
}

func TestLevel_Valid(t *testing.T) {
	for _, f := range []float64{1, 1.5, 20, 40, 50.5, 51} {
		_, err := stats.NewLevel(f)
		assert.NoError(t, err, "level %g", f)
	}
	for _, f := range []float64{0, 0.5, 1.25, 51.5, 55, -3} {
		_, err := stats.NewLevel(f)
		assert.ErrorIs(t, err, stats.ErrInvalidLevel, "level %g", f)
	}
}

func TestLevel_IndexRoundTrip(t *testing.T) {
	for i := 0; i < stats.LevelCount; i++ {
		l := stats.LevelAt(i)
		require.True(t, l.Valid())
		assert.Equal(t, i, l.Index())
	}
	assert.Equal(t, stats.MaxLevel, stats.LevelAt(stats.LevelCount-1))
	assert.Panics(t, func() { stats.LevelAt(stats.LevelCount) })
}

func TestLevel_CPMStrictlyIncreasing(t *testing.T) {
	for i := 1; i < stats.LevelCount; i++ {
		assert.Greater(t, stats.LevelAt(i).CPM(), stats.LevelAt(i-1).CPM(), "index %d", i)
	}
	assert.Equal(t, stats.MaxLevel.CPM(), stats.MaxCPM())
	assert.InDelta(t, 0.7903, stats.Level(40).CPM(), 1e-4)
}

func TestLevel_Next(t *testing.T) {
	n, ok := stats.Level(40).Next()
	assert.True(t, ok)
	assert.Equal(t, stats.Level(40.5), n)
	_, ok = stats.MaxLevel.Next()
	assert.False(t, ok)
}

func TestIVs(t *testing.T) {
	assert.True(t, stats.Hundo.Valid())
	assert.False(t, stats.IVs{Attack: 16}.Valid())
	assert.False(t, stats.IVs{Stamina: -1}.Valid())
	assert.Equal(t, "15/15/13", stats.IVs{Attack: 15, Defense: 15, Stamina: 13}.String())
	assert.Equal(t, stats.IVCombinations-1, stats.Hundo.Index())
}

func TestParseIVs(t *testing.T) {
	iv, err := stats.ParseIVs(" 0/15/14 ")
	require.NoError(t, err)
	assert.Equal(t, stats.IVs{Attack: 0, Defense: 15, Stamina: 14}, iv)

	for _, bad := range []string{"", "15/15", "15/15/15/15", "a/b/c", "16/0/0", "0/-1/0"} {
		_, err := stats.ParseIVs(bad)
		assert.ErrorIs(t, err, stats.ErrInvalidIVs, bad)
	}
}

func TestIVs_IndexRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		iv := stats.IVs{
			Attack:  rapid.IntRange(0, 15).Draw(rt, "atk"),
			Defense: rapid.IntRange(0, 15).Draw(rt, "def"),
			Stamina: rapid.IntRange(0, 15).Draw(rt, "sta"),
		}
		if got := stats.IVsAt(iv.Index()); got != iv {
			rt.Fatalf("IVsAt(%d) = %v, want %v", iv.Index(), got, iv)
		}
	})
}

func TestNewIndividual_Validation(t *testing.T) {
	_, err := stats.NewIndividual(dialga, 40.25, stats.Hundo)
	assert.ErrorIs(t, err, stats.ErrInvalidLevel)
	_, err = stats.NewIndividual(dialga, 40, stats.IVs{Attack: 16})
	assert.ErrorIs(t, err, stats.ErrInvalidIVs)
	assert.Panics(t, func() { stats.MustIndividual(dialga, 52, stats.Hundo) })
}

func TestIndividual_Stats(t *testing.T) {
	tests := []struct {
		name    string
		species *catalog.Species
		level   stats.Level
		ivs     stats.IVs
		atk     float64
		def     float64
		sta     float64
		cp      int
	}{
		{"dialga L40 15/15/13", dialga, 40, stats.IVs{Attack: 15, Defense: 15, Stamina: 13}, 229.19, 178.61, 172.29, 4020},
		{"dialga L50 15/15/13", dialga, 50, stats.IVs{Attack: 15, Defense: 15, Stamina: 13}, 243.69, 189.91, 183.19, 4545},
		{"mewtwo L50 hundo", mewtwo, 50, stats.Hundo, 264.69, 165.54, 192.43, 4724},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ind, err := stats.NewIndividual(tc.species, tc.level, tc.ivs)
			require.NoError(t, err)
			assert.InDelta(t, tc.atk, ind.AttackStat(), 0.01)
			assert.InDelta(t, tc.def, ind.DefenseStat(), 0.01)
			assert.InDelta(t, tc.sta, ind.StaminaStat(), 0.01)
			assert.Equal(t, tc.cp, ind.CP())
			assert.Equal(t, tc.cp, ind.PowerCap())
		})
	}
}

func TestIndividual_StatProductUsesFlooredStamina(t *testing.T) {
	ind := stats.MustIndividual(mewtwo, 50, stats.Hundo)
	assert.Equal(t, 192, ind.HP())
	assert.InDelta(t, ind.AttackStat()*ind.DefenseStat()*192, ind.StatProduct(), 1e-6)
}

func TestIndividual_MinimumCP(t *testing.T) {
	weak := &catalog.Species{ID: "weak", Name: "Weak", Base: catalog.BaseStats{Attack: 1, Defense: 1, Stamina: 1}}
	ind := stats.MustIndividual(weak, 1, stats.IVs{})
	assert.Equal(t, 0, ind.PowerCap())
	assert.Equal(t, stats.MinCP, ind.CP())
	assert.Equal(t, stats.MinCP, ind.HP())
}

func TestIndividual_String(t *testing.T) {
	ind := stats.MustIndividual(catalog.WithShadow(dialga), 40, stats.IVs{Attack: 15, Defense: 15, Stamina: 13})
	assert.Equal(t, "Dialga (Shadow) L40 15/15/13 CP 4020", ind.String())
}

func TestPowerCap_MonotonicInLevel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sp := &catalog.Species{ID: "x", Name: "X", Base: catalog.BaseStats{
			Attack:  float64(rapid.IntRange(1, 400).Draw(rt, "baseAtk")),
			Defense: float64(rapid.IntRange(1, 400).Draw(rt, "baseDef")),
			Stamina: float64(rapid.IntRange(1, 500).Draw(rt, "baseSta")),
		}}
		iv := stats.IVsAt(rapid.IntRange(0, stats.IVCombinations-1).Draw(rt, "iv"))
		i := rapid.IntRange(0, stats.LevelCount-2).Draw(rt, "level")
		lo := stats.MustIndividual(sp, stats.LevelAt(i), iv)
		hi := stats.MustIndividual(sp, stats.LevelAt(i+1), iv)
		if hi.PowerCap() < lo.PowerCap() {
			rt.Fatalf("power cap decreased from %d to %d between levels %s and %s", lo.PowerCap(), hi.PowerCap(), lo.Level(), hi.Level())
		}
		if hi.AttackStat() <= lo.AttackStat() {
			rt.Fatalf("attack did not increase")
		}
	})
}
