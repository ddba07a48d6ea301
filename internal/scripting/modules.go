package scripting

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/damage"
	"github.com/cory-johannsen/pvp-damage/internal/game/league"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/matchup"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
	"github.com/cory-johannsen/pvp-damage/internal/report"
)

// session binds engine.* functions to one run's context.
type session struct {
	*Runner
	ctx context.Context
}

// RegisterModules registers all engine.* Lua tables into L. Blocking engine
// calls observe ctx.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (r *Runner) RegisterModules(ctx context.Context, L *lua.LState) {
	s := &session{Runner: r, ctx: ctx}
	engine := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"species":     s.luaSpecies,
		"max_level":   s.luaMaxLevel,
		"damage":      s.luaDamage,
		"bulkpoints":  s.luaBulkpoints,
		"breakpoints": s.luaBreakpoints,
		"roster":      s.luaRoster,
		"rank1":       s.luaRank1,
		"league":      s.luaLeague,
		"print":       s.luaPrint,
	})
	L.SetField(engine, "log", s.logModule(L))
	L.SetGlobal("engine", engine)
}

func (s *session) logModule(L *lua.LState) *lua.LTable {
	logAt := func(log func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			log("lua: "+L.CheckString(1), zap.String("source", "script"))
			return 0
		}
	}
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"debug": logAt(s.logger.Debug),
		"info":  logAt(s.logger.Info),
		"warn":  logAt(s.logger.Warn),
		"error": logAt(s.logger.Error),
	})
}

// engine.species(id_or_name [, shadow]) -> table | nil
func (s *session) luaSpecies(L *lua.LState) int {
	sp, err := s.resolver.Species(L.CheckString(1), L.OptBool(2, false))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(speciesTable(L, sp))
	return 1
}

// engine.max_level(species, ivs, cap) -> individual | nil, err
func (s *session) luaMaxLevel(L *lua.LState) int {
	sp, err := s.resolver.Species(L.CheckString(1), false)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	ivs, err := stats.ParseIVs(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
	}
	capLimit, err := capValue(L.Get(3))
	if err != nil || capLimit <= 0 {
		L.ArgError(3, "cap must be a positive number or a league id")
	}
	ind, err := leveling.FindMaxLevel(sp, ivs, capLimit)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(individualTable(L, ind))
	return 1
}

// engine.damage{attacker=, defender=, move=, ...} -> int
func (s *session) luaDamage(L *lua.LState) int {
	opts := L.CheckTable(1)
	capLimit := s.optCap(L, opts)
	att := s.individual(L, opts, "attacker", capLimit)
	def := s.individual(L, opts, "defender", capLimit)
	move := s.move(L, opts)
	L.Push(lua.LNumber(damage.Calculate(move, att, def, buffs(opts))))
	return 1
}

// engine.bulkpoints{attacker=, defender=, move=, cap=, filter=, print=, save=} -> report
func (s *session) luaBulkpoints(L *lua.LState) int {
	opts := L.CheckTable(1)
	capLimit := s.requireCap(L, opts)
	att := s.individual(L, opts, "attacker", capLimit)
	defSpecies := s.sideSpecies(L, opts, "defender")
	move := s.move(L, opts)
	b := buffs(opts)

	roster, err := s.enum.Enumerate(s.ctx, defSpecies, capLimit)
	if err != nil {
		L.RaiseError("engine.bulkpoints: %s", err.Error())
	}
	ranges, err := s.part.Bulkpoints(att, s.filter(L, opts, roster.Individuals()), move, b)
	if err != nil {
		L.RaiseError("engine.bulkpoints: %s", err.Error())
	}
	rep := report.FromRanges(report.KindBulkpoints,
		report.BattlerFor(att.Species(), b.Attack), report.BattlerFor(defSpecies, b.Defense),
		move, capLimit, ranges)
	return s.finish(L, opts, rep)
}

// engine.breakpoints{attacker=, defender=, move=, cap=, filter=, print=, save=} -> report
func (s *session) luaBreakpoints(L *lua.LState) int {
	opts := L.CheckTable(1)
	capLimit := s.requireCap(L, opts)
	attSpecies := s.sideSpecies(L, opts, "attacker")
	def := s.individual(L, opts, "defender", capLimit)
	move := s.move(L, opts)
	b := buffs(opts)

	roster, err := s.enum.Enumerate(s.ctx, attSpecies, capLimit)
	if err != nil {
		L.RaiseError("engine.breakpoints: %s", err.Error())
	}
	ranges, err := s.part.BreakpointsAgainst(s.filter(L, opts, roster.Individuals()), def, move, b)
	if err != nil {
		L.RaiseError("engine.breakpoints: %s", err.Error())
	}
	rep := report.FromRanges(report.KindBreakpoints,
		report.BattlerFor(attSpecies, b.Attack), report.BattlerFor(def.Species(), b.Defense),
		move, capLimit, ranges)
	return s.finish(L, opts, rep)
}

func (s *session) finish(L *lua.LState, opts *lua.LTable, rep *report.Report) int {
	if lua.LVAsBool(opts.RawGetString("print")) {
		if err := report.Write(s.out(), rep); err != nil {
			L.RaiseError("writing report: %s", err.Error())
		}
	}
	if lua.LVAsBool(opts.RawGetString("save")) && s.SaveReport != nil {
		if err := s.SaveReport(s.ctx, rep); err != nil {
			L.RaiseError("saving report: %s", err.Error())
		}
	}
	L.Push(reportTable(L, rep))
	return 1
}

// engine.roster(species, cap) -> {individual, ...} in IV index order
func (s *session) luaRoster(L *lua.LState) int {
	roster := s.roster(L)
	out := L.CreateTable(roster.Len(), 0)
	for _, ind := range roster.Individuals() {
		out.Append(individualTable(L, ind))
	}
	L.Push(out)
	return 1
}

// engine.rank1(species, cap) -> individual with the highest stat product
func (s *session) luaRank1(L *lua.LState) int {
	roster := s.roster(L)
	L.Push(individualTable(L, breakpoint.Rank1(roster.Individuals())))
	return 1
}

func (s *session) roster(L *lua.LState) *leveling.Roster {
	sp, err := s.resolver.Species(L.CheckString(1), false)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	capLimit, err := capValue(L.Get(2))
	if err != nil || capLimit <= 0 {
		L.ArgError(2, "cap must be a positive number or a league id")
	}
	roster, err := s.enum.Enumerate(s.ctx, sp, capLimit)
	if err != nil {
		L.RaiseError("engine.roster: %s", err.Error())
	}
	return roster
}

// engine.league(id) -> {id, name, cap, meta = {{species, fast, charged}, ...}} | nil
func (s *session) luaLeague(L *lua.LState) int {
	id := L.CheckString(1)
	if s.leagues == nil {
		L.Push(lua.LNil)
		return 1
	}
	l, ok := s.leagues.Get(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(leagueTable(L, l))
	return 1
}

// engine.print(...) writes its arguments, tab separated, to the runner output.
func (s *session) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if _, err := fmt.Fprintln(s.out(), strings.Join(parts, "\t")); err != nil {
		L.RaiseError("engine.print: %s", err.Error())
	}
	return 0
}

func (s *session) sideSpecies(L *lua.LState, opts *lua.LTable, side string) *catalog.Species {
	name, ok := opts.RawGetString(side).(lua.LString)
	if !ok {
		L.RaiseError("%s must be a species id or name", side)
	}
	sp, err := s.resolver.Species(string(name), lua.LVAsBool(opts.RawGetString(side+"_shadow")))
	if err != nil {
		L.RaiseError("%s: %s", side, err.Error())
	}
	return sp
}

// individual builds one side of a matchup from <side>, <side>_shadow,
// <side>_level and <side>_ivs.
func (s *session) individual(L *lua.LState, opts *lua.LTable, side string, capLimit int) stats.Individual {
	name, ok := opts.RawGetString(side).(lua.LString)
	if !ok {
		L.RaiseError("%s must be a species id or name", side)
	}
	battler := matchup.Side{
		Species: string(name),
		Shadow:  lua.LVAsBool(opts.RawGetString(side + "_shadow")),
	}
	if lv, ok := opts.RawGetString(side + "_level").(lua.LNumber); ok {
		battler.Level = float64(lv)
	}
	if iv, ok := opts.RawGetString(side + "_ivs").(lua.LString); ok {
		battler.IVs = string(iv)
	}
	ind, err := s.resolver.Individual(s.ctx, battler, capLimit)
	if err != nil {
		L.RaiseError("%s: %s", side, err.Error())
	}
	return ind
}

func (s *session) move(L *lua.LState, opts *lua.LTable) catalog.Move {
	name, ok := opts.RawGetString("move").(lua.LString)
	if !ok {
		L.RaiseError("move must be a move name or id")
	}
	m, err := s.resolver.Move(string(name))
	if err != nil {
		L.RaiseError("move: %s", err.Error())
	}
	return m
}

func (s *session) filter(L *lua.LState, opts *lua.LTable, inds []stats.Individual) []stats.Individual {
	expr, ok := opts.RawGetString("filter").(lua.LString)
	if !ok {
		return inds
	}
	keep, err := breakpoint.ParseFilter(string(expr))
	if err != nil {
		L.RaiseError("filter: %s", err.Error())
	}
	return breakpoint.Filter(inds, keep)
}

func (s *session) optCap(L *lua.LState, opts *lua.LTable) int {
	capLimit, err := capValue(opts.RawGetString("cap"))
	if err != nil {
		L.RaiseError("cap: %s", err.Error())
	}
	return capLimit
}

func (s *session) requireCap(L *lua.LState, opts *lua.LTable) int {
	capLimit := s.optCap(L, opts)
	if capLimit <= 0 {
		L.RaiseError("cap is required")
	}
	return capLimit
}

// capValue accepts a number or a league id; nil yields 0.
func capValue(v lua.LValue) (int, error) {
	switch c := v.(type) {
	case lua.LNumber:
		return int(c), nil
	case lua.LString:
		return league.ParseCap(string(c))
	case *lua.LNilType:
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported cap value of type %s", v.Type())
}

func buffs(opts *lua.LTable) damage.Buffs {
	stage := func(key string) damage.Stage {
		n, _ := opts.RawGetString(key).(lua.LNumber)
		return damage.Stage(int(n))
	}
	return damage.Buffs{Attack: stage("attack_buff"), Defense: stage("defense_buff")}
}

func speciesTable(L *lua.LState, sp *catalog.Species) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(sp.Key()))
	t.RawSetString("name", lua.LString(sp.FullName()))
	t.RawSetString("dex", lua.LNumber(sp.Dex))
	t.RawSetString("shadow", lua.LBool(sp.Shadow))
	t.RawSetString("attack", lua.LNumber(sp.Base.Attack))
	t.RawSetString("defense", lua.LNumber(sp.Base.Defense))
	t.RawSetString("stamina", lua.LNumber(sp.Base.Stamina))
	types := L.NewTable()
	for _, ty := range sp.Types {
		types.Append(lua.LString(ty.String()))
	}
	t.RawSetString("types", types)
	fast := L.NewTable()
	for _, m := range sp.FastMoves {
		fast.Append(lua.LString(m.MoveName))
	}
	t.RawSetString("fast_moves", fast)
	charged := L.NewTable()
	for _, m := range sp.ChargedMoves {
		charged.Append(lua.LString(m.MoveName))
	}
	t.RawSetString("charged_moves", charged)
	return t
}

func individualTable(L *lua.LState, ind stats.Individual) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("species", lua.LString(ind.Species().Key()))
	t.RawSetString("name", lua.LString(ind.Species().FullName()))
	t.RawSetString("level", lua.LNumber(ind.Level()))
	t.RawSetString("ivs", lua.LString(ind.IVs().String()))
	t.RawSetString("attack", lua.LNumber(ind.AttackStat()))
	t.RawSetString("defense", lua.LNumber(ind.DefenseStat()))
	t.RawSetString("stamina", lua.LNumber(ind.StaminaStat()))
	t.RawSetString("hp", lua.LNumber(ind.HP()))
	t.RawSetString("cp", lua.LNumber(ind.CP()))
	t.RawSetString("stat_product", lua.LNumber(ind.StatProduct()))
	return t
}

func reportTable(L *lua.LState, rep *report.Report) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(rep.ID.String()))
	t.RawSetString("kind", lua.LString(rep.Kind))
	t.RawSetString("title", lua.LString(rep.Title()))
	t.RawSetString("attacker", lua.LString(rep.Attacker))
	t.RawSetString("defender", lua.LString(rep.Defender))
	t.RawSetString("move", lua.LString(rep.Move))
	t.RawSetString("cap", lua.LNumber(rep.CapLimit))
	t.RawSetString("stat", lua.LString(rep.Stat))
	t.RawSetString("min_damage", lua.LNumber(rep.MinDamage))
	t.RawSetString("max_damage", lua.LNumber(rep.MaxDamage))
	t.RawSetString("total", lua.LNumber(rep.Total))
	t.RawSetString("rank1", lua.LString(rep.Rank1))
	t.RawSetString("rank1_stat", lua.LNumber(rep.Rank1Stat))
	t.RawSetString("damage_rank1", lua.LNumber(rep.DamageRank1))
	tiers := L.CreateTable(len(rep.Tiers), 0)
	for _, tier := range rep.Tiers {
		tt := L.NewTable()
		tt.RawSetString("damage", lua.LNumber(tier.Damage))
		tt.RawSetString("count", lua.LNumber(tier.Count))
		tt.RawSetString("percent", lua.LNumber(tier.Percent))
		tt.RawSetString("low", lua.LNumber(tier.Low))
		tt.RawSetString("high", lua.LNumber(tier.High))
		tt.RawSetString("low_ivs", lua.LString(tier.LowIVs))
		tt.RawSetString("high_ivs", lua.LString(tier.HighIVs))
		tiers.Append(tt)
	}
	t.RawSetString("tiers", tiers)
	return t
}

func leagueTable(L *lua.LState, l *league.League) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(l.ID))
	t.RawSetString("name", lua.LString(l.Name))
	t.RawSetString("cap", lua.LNumber(l.CapLimit))
	meta := L.CreateTable(len(l.Meta), 0)
	for _, e := range l.Meta {
		et := L.NewTable()
		et.RawSetString("species", lua.LString(e.Species.Key()))
		et.RawSetString("name", lua.LString(e.Species.FullName()))
		et.RawSetString("fast", lua.LString(e.Moveset.Fast.MoveName))
		charged := L.NewTable()
		for _, c := range e.Moveset.Charged {
			if c != nil {
				charged.Append(lua.LString(c.MoveName))
			}
		}
		et.RawSetString("charged", charged)
		meta.Append(et)
	}
	t.RawSetString("meta", meta)
	return t
}
