package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/typing"
	"github.com/cory-johannsen/pvp-damage/internal/testutil"
)

func TestLoadGamemaster_Counts(t *testing.T) {
	c := testutil.Catalog(t)
	assert.Equal(t, 7, c.SpeciesCount())
	// 11 fast moves plus the Struggle placeholder.
	assert.Equal(t, 12, c.FastMoveCount())
	assert.Equal(t, 15, c.ChargedMoveCount())
}

func TestLoadGamemaster_SkipsShadowAndSizeVariants(t *testing.T) {
	c := testutil.Catalog(t)
	for _, s := range c.AllSpecies() {
		assert.NotContains(t, s.ID, "shadow")
		assert.NotContains(t, s.ID, "_xl")
		assert.False(t, s.Shadow)
	}
}

func TestSpeciesByID(t *testing.T) {
	c := testutil.Catalog(t)
	s, err := c.SpeciesByID("dialga")
	require.NoError(t, err)
	assert.Equal(t, 483, s.Dex)
	assert.Equal(t, "Dialga", s.Name)
	assert.Equal(t, []typing.Type{typing.Dragon, typing.Steel}, s.Types)
	assert.Equal(t, catalog.BaseStats{Attack: 275, Defense: 211, Stamina: 205}, s.Base)
	assert.False(t, s.Shadow)
	require.Len(t, s.FastMoves, 2)
	assert.Equal(t, "DRAGON_BREATH", s.FastMoves[0].MoveID)
}

func TestSpeciesByID_ShadowSuffix(t *testing.T) {
	c := testutil.Catalog(t)
	s, err := c.SpeciesByID("machamp_shadow")
	require.NoError(t, err)
	assert.True(t, s.Shadow)
	assert.Equal(t, "machamp", s.ID)
	assert.Equal(t, "machamp_shadow", s.Key())
	assert.Equal(t, "Machamp (Shadow)", s.FullName())

	base, err := c.SpeciesByID("machamp")
	require.NoError(t, err)
	assert.False(t, base.Shadow, "deriving a shadow must not mutate the catalog entry")
	assert.False(t, base.Same(s))
	assert.True(t, s.Same(catalog.WithShadow(base)))
}

func TestSpecies_ByNameCaseInsensitive(t *testing.T) {
	c := testutil.Catalog(t)
	s, err := c.Species("  stunfisk (GALARIAN) ", false)
	require.NoError(t, err)
	assert.Equal(t, "stunfisk_galarian", s.ID)

	sh, err := c.Species("Azumarill", true)
	require.NoError(t, err)
	assert.True(t, sh.Shadow)
}

func TestSpecies_NotFound(t *testing.T) {
	c := testutil.Catalog(t)
	_, err := c.Species("Missingno", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrSpeciesNotFound))
	assert.False(t, errors.Is(err, catalog.ErrMoveNotFound))

	var nf *catalog.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Missingno", nf.Key)

	_, err = c.SpeciesByID("missingno_shadow")
	assert.ErrorIs(t, err, catalog.ErrSpeciesNotFound)
}

func TestFastMove(t *testing.T) {
	c := testutil.Catalog(t)
	tests := []struct {
		name   string
		typ    typing.Type
		power  int
		energy int
		turns  int
	}{
		{"Dragon Breath", typing.Dragon, 4, 3, 1},
		{"Mud Shot", typing.Ground, 3, 9, 2},
		{"Counter", typing.Fighting, 8, 7, 2},
		{"Incinerate", typing.Fire, 15, 20, 5},
		{"Transform", typing.Normal, 0, 0, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := c.FastMove(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.typ, m.Type())
			assert.Equal(t, tc.power, m.Power())
			assert.Equal(t, tc.energy, m.Energy())
			assert.Equal(t, tc.turns, m.Turns)
		})
	}
}

func TestChargedMove(t *testing.T) {
	c := testutil.Catalog(t)
	m, err := c.ChargedMove("iron head")
	require.NoError(t, err)
	assert.Equal(t, "IRON_HEAD", m.ID())
	assert.Equal(t, typing.Steel, m.Type())
	assert.Equal(t, 70, m.Power())
	assert.Equal(t, 50, m.Energy())
	assert.Equal(t, "Iron Head (steel; 70 power, 50 energy)", m.String())

	byID, err := c.ChargedMoveByID("IRON_HEAD")
	require.NoError(t, err)
	assert.Same(t, m, byID)

	_, err = c.ChargedMoveByID("HYPER_BEAM")
	assert.ErrorIs(t, err, catalog.ErrMoveNotFound)
}

func TestMove_ResolvesEitherKind(t *testing.T) {
	c := testutil.Catalog(t)
	m, err := c.Move("Vine Whip")
	require.NoError(t, err)
	_, ok := m.(*catalog.FastMove)
	assert.True(t, ok)

	m, err = c.Move("Frenzy Plant")
	require.NoError(t, err)
	_, ok = m.(*catalog.ChargedMove)
	assert.True(t, ok)

	_, err = c.Move("Splash")
	assert.ErrorIs(t, err, catalog.ErrMoveNotFound)
}

func TestMove_Ambiguous(t *testing.T) {
	c := testutil.Catalog(t)
	_, err := c.Move("Struggle")
	assert.ErrorIs(t, err, catalog.ErrAmbiguousMove)
}

func TestKnowsMove(t *testing.T) {
	c := testutil.Catalog(t)
	dialga := testutil.MustSpecies(t, c, "dialga")
	breath, err := c.FastMoveByID("DRAGON_BREATH")
	require.NoError(t, err)
	mud, err := c.FastMoveByID("MUD_SHOT")
	require.NoError(t, err)
	assert.True(t, dialga.KnowsMove(breath))
	assert.False(t, dialga.KnowsMove(mud))
	assert.True(t, dialga.HasType(typing.Steel))
	assert.False(t, dialga.HasType(typing.Ground))
}

func TestAllSpecies_SortedByDex(t *testing.T) {
	c := testutil.Catalog(t)
	all := c.AllSpecies()
	require.Len(t, all, 7)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Dex, all[i].Dex)
	}
	assert.Equal(t, "machamp", all[0].ID)
}

func TestNew_FirstDuplicateWins(t *testing.T) {
	a := &catalog.FastMove{MoveID: "X", MoveName: "First", MoveType: typing.Normal}
	b := &catalog.FastMove{MoveID: "X", MoveName: "Second", MoveType: typing.Normal}
	c := catalog.New([]*catalog.FastMove{a, b}, nil, nil)
	assert.Equal(t, 1, c.FastMoveCount())
	m, err := c.FastMoveByID("X")
	require.NoError(t, err)
	assert.Equal(t, "First", m.MoveName)
	_, err = c.FastMove("Second")
	assert.ErrorIs(t, err, catalog.ErrMoveNotFound)
}

func TestNewMoveset(t *testing.T) {
	c := testutil.Catalog(t)
	fast, err := c.FastMoveByID("BUBBLE")
	require.NoError(t, err)
	ice, err := c.ChargedMoveByID("ICE_BEAM")
	require.NoError(t, err)
	rough, err := c.ChargedMoveByID("PLAY_ROUGH")
	require.NoError(t, err)
	pump, err := c.ChargedMoveByID("HYDRO_PUMP")
	require.NoError(t, err)

	ms, err := catalog.NewMoveset(fast, ice)
	require.NoError(t, err)
	assert.Nil(t, ms.Charged[1])

	ms, err = catalog.NewMoveset(fast, ice, rough)
	require.NoError(t, err)
	assert.Same(t, rough, ms.Charged[1])

	_, err = catalog.NewMoveset(fast)
	assert.Error(t, err)
	_, err = catalog.NewMoveset(fast, ice, rough, pump)
	assert.Error(t, err)
	_, err = catalog.NewMoveset(nil, ice)
	assert.Error(t, err)
}

func TestDecodeGamemaster_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing moves", `{"pokemon": []}`},
		{"move without power", `{"pokemon": [], "moves": [{"moveId": "A", "name": "A", "type": "fire", "energy": 0, "energyGain": 3, "cooldown": 500}]}`},
		{"fast move without cooldown", `{"pokemon": [], "moves": [{"moveId": "A", "name": "A", "type": "fire", "power": 3, "energy": 0, "energyGain": 3}]}`},
		{"unknown move type", `{"pokemon": [], "moves": [{"moveId": "A", "name": "A", "type": "sound", "power": 3, "energy": 0, "energyGain": 3, "cooldown": 500}]}`},
		{"species without stats", `{"moves": [], "pokemon": [{"dex": 1, "speciesId": "a", "speciesName": "A", "types": ["grass"]}]}`},
		{"species without types", `{"moves": [], "pokemon": [{"dex": 1, "speciesId": "a", "speciesName": "A", "types": ["none", "none"], "baseStats": {"atk": 1, "def": 1, "hp": 1}}]}`},
		{"species with unknown move", `{"moves": [], "pokemon": [{"dex": 1, "speciesId": "a", "speciesName": "A", "types": ["grass"], "baseStats": {"atk": 1, "def": 1, "hp": 1}, "fastMoves": ["VINE_WHIP"]}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.DecodeGamemaster(strings.NewReader(tc.doc))
			assert.ErrorIs(t, err, catalog.ErrSchema)
		})
	}
}

func TestDecodeGamemaster_UnknownMoveCarriesID(t *testing.T) {
	doc := `{"moves": [], "pokemon": [{"dex": 1, "speciesId": "a", "speciesName": "A", "types": ["grass"], "baseStats": {"atk": 1, "def": 1, "hp": 1}, "chargedMoves": ["SOLAR_BEAM"]}]}`
	_, err := catalog.DecodeGamemaster(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrMoveNotFound)
	assert.Contains(t, err.Error(), "SOLAR_BEAM")
}

func TestLoadGamemaster_MissingFile(t *testing.T) {
	_, err := catalog.LoadGamemaster("does-not-exist.json")
	assert.Error(t, err)
}
