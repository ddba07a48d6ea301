package scripting

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/league"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/matchup"
	"github.com/cory-johannsen/pvp-damage/internal/report"
)

// mainFunc is the optional global a script defines to receive its arguments.
const mainFunc = "main"

// Runner executes report scripts. Every run gets a fresh sandboxed VM with the
// engine.* module registered, so runs never share Lua state.
//
// Runner is safe for concurrent use once its injected fields are set.
type Runner struct {
	resolver  *matchup.Resolver
	enum      *leveling.Enumerator
	part      *breakpoint.Partitioner
	leagues   *league.Registry
	logger    *zap.Logger
	scriptDir string
	instLimit int

	// Injected after construction.
	// Out receives engine.print and rendered reports; nil means os.Stdout.
	Out io.Writer
	// SaveReport persists reports for scripts passing save = true; nil = no-op.
	SaveReport func(ctx context.Context, r *report.Report) error
}

// NewRunner creates a Runner.
//
// Precondition: c, enum, part and logger must be non-nil. leagues may be nil, in
// which case engine.league always returns nil.
// Postcondition: Returns a non-nil Runner.
func NewRunner(cfg config.ScriptingConfig, c *catalog.Catalog, enum *leveling.Enumerator, part *breakpoint.Partitioner, leagues *league.Registry, logger *zap.Logger) *Runner {
	return &Runner{
		resolver:  matchup.NewResolver(c, enum),
		enum:      enum,
		part:      part,
		leagues:   leagues,
		logger:    logger,
		scriptDir: cfg.ScriptDir,
		instLimit: cfg.InstructionLimit,
	}
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// Scripts lists the *.lua files in the script directory in lexicographic order,
// without their extension.
func (r *Runner) Scripts() ([]string, error) {
	entries, err := os.ReadDir(r.scriptDir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", r.scriptDir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			names = append(names, strings.TrimSuffix(e.Name(), ".lua"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve maps a bare script name such as "vs_defender" onto the script
// directory. Paths containing a separator or a .lua extension are returned as is.
func (r *Runner) Resolve(name string) string {
	if strings.ContainsRune(name, filepath.Separator) || filepath.Ext(name) == ".lua" {
		return name
	}
	return filepath.Join(r.scriptDir, name+".lua")
}

// RunFile reads the script at path (see Resolve) and runs it with args.
//
// Postcondition: Returns a non-nil error on read failure or Lua error.
func (r *Runner) RunFile(ctx context.Context, path string, args ...string) error {
	path = r.Resolve(path)
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("scripting: reading %q: %w", path, err)
	}
	return r.Run(ctx, filepath.Base(path), string(src), args...)
}

// Run executes src in a fresh sandbox, then calls its main function with args
// when the script defines one. Lua errors, including an exhausted instruction
// budget, are logged at Warn level and returned.
//
// Postcondition: The VM is closed before Run returns.
func (r *Runner) Run(ctx context.Context, name, src string, args ...string) error {
	L, cancel := NewSandboxedState(ctx, r.instLimit)
	defer cancel()
	defer L.Close()
	r.RegisterModules(ctx, L)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return r.fail(name, "", err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return r.fail(name, "", err)
	}

	main := L.GetGlobal(mainFunc)
	if main.Type() != lua.LTFunction {
		return nil
	}
	argv := L.NewTable()
	for _, a := range args {
		argv.Append(lua.LString(a))
	}
	if err := L.CallByParam(lua.P{Fn: main, NRet: 0, Protect: true}, argv); err != nil {
		return r.fail(name, mainFunc, err)
	}
	return nil
}

func (r *Runner) fail(name, fn string, err error) error {
	r.logger.Warn("scripting: Lua runtime error",
		zap.String("script", name),
		zap.String("function", fn),
		zap.Error(err),
	)
	return fmt.Errorf("scripting: %s: %w", name, err)
}
