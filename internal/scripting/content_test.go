package scripting_test

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pvp-damage/internal/config"
)

func contentDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "content", "scripts")
}

func contentHarness(t *testing.T) *harness {
	t.Helper()
	return newHarness(t, config.ScriptingConfig{ScriptDir: contentDir(), InstructionLimit: 5_000_000})
}

func TestContent_ScriptsListed(t *testing.T) {
	names, err := contentHarness(t).runner.Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"bulkpoints", "league_breakpoints", "vs_defender"}, names)
}

func TestContent_VsDefender(t *testing.T) {
	h := contentHarness(t)
	require.NoError(t, h.runner.RunFile(context.Background(), "vs_defender",
		"garchomp", "stunfisk_galarian", "Mud Shot", "1500"))
	out := h.out.String()
	assert.Contains(t, out, "----- garchomp using Mud Shot vs. stunfisk_galarian -----")
	for _, label := range []string{"vs. min defense (", "vs. rank 1 (", "vs. max defense ("} {
		assert.Contains(t, out, label)
	}
	assert.Equal(t, 3, strings.Count(out, "Garchomp using Mud Shot vs. Stunfisk (Galarian) (CP cap 1,500)"))
}

func TestContent_Bulkpoints(t *testing.T) {
	h := contentHarness(t)
	require.NoError(t, h.runner.RunFile(context.Background(), "bulkpoints",
		"garchomp", "14.5", "8/0/1", "Mud Shot", "stunfisk_galarian", "great"))
	out := h.out.String()
	assert.Contains(t, out, "rank 1 0/12/15")
	assert.Contains(t, out, "- 4: ")
	assert.Contains(t, out, "- 5: ")
}

func TestContent_LeagueBreakpoints(t *testing.T) {
	h := contentHarness(t)
	require.NoError(t, h.runner.RunFile(context.Background(), "league_breakpoints", "great", "azumarill"))
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Great League: fast move breakpoints vs. Azumarill "))
	assert.Contains(t, lines[3], "Machamp (Shadow)")
	assert.Contains(t, lines[3], "Counter")
}

func TestContent_LeagueWithoutMetaWarns(t *testing.T) {
	h := contentHarness(t)
	require.NoError(t, h.runner.RunFile(context.Background(), "league_breakpoints", "master", "dialga"))
	assert.Empty(t, h.out.String())
	assert.Equal(t, 1, h.logs.FilterMessage("lua: Master League has no meta roster").Len())
}

func TestContent_UsageErrors(t *testing.T) {
	h := contentHarness(t)
	for _, name := range []string{"vs_defender", "bulkpoints", "league_breakpoints"} {
		err := h.runner.RunFile(context.Background(), name)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "usage:")
	}
}
