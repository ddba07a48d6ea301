package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/advisor"
	"github.com/cory-johannsen/pvp-damage/internal/app"
	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/game/breakpoint"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/damage"
	"github.com/cory-johannsen/pvp-damage/internal/game/league"
	"github.com/cory-johannsen/pvp-damage/internal/game/leveling"
	"github.com/cory-johannsen/pvp-damage/internal/game/matchup"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
	"github.com/cory-johannsen/pvp-damage/internal/game/typing"
	"github.com/cory-johannsen/pvp-damage/internal/report"
)

// env is the engine plus the command's output streams.
type env struct {
	*app.Engine
	advisor *advisor.Advisor
	stdout  io.Writer
	stderr  io.Writer
}

func newEnv(ctx context.Context, configPath string, stdout, stderr io.Writer) (*env, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	e, cleanup, err := app.InitializeEngine(ctx, cfg, "pvpcalc")
	if err != nil {
		return nil, nil, err
	}
	e.Runner.Out = stdout
	return &env{
		Engine:  e,
		advisor: app.ProvideAdvisor(cfg, e.Logger),
		stdout:  stdout,
		stderr:  stderr,
	}, cleanup, nil
}

func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// parse wraps FlagSet.Parse so that bad flags surface as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func missing(fs *flag.FlagSet, names ...string) error {
	fmt.Fprintf(fs.Output(), "%s: -%s is required\n", fs.Name(), strings.Join(names, ", -"))
	fs.Usage()
	return errUsage
}

// sideFlags are the flags describing one battler.
type sideFlags struct {
	name   string
	shadow bool
	level  float64
	ivs    string
}

func addSide(fs *flag.FlagSet, side string) *sideFlags {
	s := &sideFlags{}
	fs.StringVar(&s.name, side, "", side+" species id or name")
	fs.BoolVar(&s.shadow, side+"-shadow", false, "use the shadow form of the "+side)
	fs.Float64Var(&s.level, side+"-level", 0, side+" level; 0 levels it to -cap")
	fs.StringVar(&s.ivs, side+"-ivs", "", side+" IVs as atk/def/sta; empty means rank 1 under -cap, or 15/15/15 without one")
	return s
}

func (s *sideFlags) side() matchup.Side {
	return matchup.Side{Species: s.name, Shadow: s.shadow, Level: s.level, IVs: s.ivs}
}

// moveFlags are the move, cap and buff flags shared by the matchup commands.
type moveFlags struct {
	move        string
	capLimit    string
	attackBuff  int
	defenseBuff int
}

func addMove(fs *flag.FlagSet, defaultCap string) *moveFlags {
	m := &moveFlags{}
	fs.StringVar(&m.move, "move", "", "move name or id")
	fs.StringVar(&m.capLimit, "cap", defaultCap, "CP cap: a number or great, ultra, master")
	fs.IntVar(&m.attackBuff, "attack-buff", 0, "attacker attack stage, -4 to 4")
	fs.IntVar(&m.defenseBuff, "defense-buff", 0, "defender defense stage, -4 to 4")
	return m
}

func (m *moveFlags) resolve(r *matchup.Resolver) (catalog.Move, int, damage.Buffs, error) {
	var capLimit int
	if m.capLimit != "" {
		n, err := league.ParseCap(m.capLimit)
		if err != nil {
			return nil, 0, damage.Buffs{}, err
		}
		capLimit = n
	}
	for _, b := range []int{m.attackBuff, m.defenseBuff} {
		if b < int(damage.MinStage) || b > int(damage.MaxStage) {
			return nil, 0, damage.Buffs{}, fmt.Errorf("buff %d outside [%d, %d]", b, damage.MinStage, damage.MaxStage)
		}
	}
	move, err := r.Move(m.move)
	if err != nil {
		return nil, 0, damage.Buffs{}, err
	}
	return move, capLimit, damage.Buffs{Attack: damage.Stage(m.attackBuff), Defense: damage.Stage(m.defenseBuff)}, nil
}

// reportFlags control what happens to a finished report.
type reportFlags struct {
	filter  string
	save    bool
	summary bool
}

func addReport(fs *flag.FlagSet) *reportFlags {
	r := &reportFlags{}
	fs.StringVar(&r.filter, "filter", "", `keep only spreads matching e.g. "def>=120.5"`)
	fs.BoolVar(&r.save, "save", false, "store the report in the database")
	fs.BoolVar(&r.summary, "summary", false, "append a plain-language summary")
	return r
}

func (rf *reportFlags) apply(inds []stats.Individual) ([]stats.Individual, error) {
	if rf.filter == "" {
		return inds, nil
	}
	keep, err := breakpoint.ParseFilter(rf.filter)
	if err != nil {
		return nil, err
	}
	return breakpoint.Filter(inds, keep), nil
}

// finish summarises, saves and prints rep as requested.
func (e *env) finish(ctx context.Context, rf *reportFlags, rep *report.Report) error {
	if rf.summary {
		if e.advisor == nil {
			e.Logger.Warn("summary requested but advisor.enabled is false")
		} else if err := e.advisor.Annotate(ctx, rep); err != nil {
			e.Logger.Warn("report summary failed", zap.Error(err))
		}
	}
	if rf.save {
		if e.Reports == nil {
			return errors.New("-save requires database.enabled")
		}
		if err := e.Reports.Save(ctx, rep); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
	}
	if err := report.Write(e.stdout, rep); err != nil {
		return err
	}
	if rf.save {
		fmt.Fprintf(e.stdout, "saved report %s\n", rep.ID)
	}
	return nil
}

func runMaxLevel(_ context.Context, e *env, args []string) error {
	fs := e.flagSet("maxlevel")
	species := fs.String("species", "", "species id or name")
	shadow := fs.Bool("shadow", false, "use the shadow form")
	ivs := fs.String("ivs", "15/15/15", "IVs as atk/def/sta")
	capLimit := fs.String("cap", "great", "CP cap: a number or great, ultra, master")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *species == "" {
		return missing(fs, "species")
	}
	sp, err := e.Resolver.Species(*species, *shadow)
	if err != nil {
		return err
	}
	iv, err := stats.ParseIVs(*ivs)
	if err != nil {
		return err
	}
	limit, err := league.ParseCap(*capLimit)
	if err != nil {
		return err
	}
	ind, err := leveling.FindMaxLevel(sp, iv, limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s %s: level %s, CP %d, HP %d (atk %.2f, def %.2f)\n",
		sp.FullName(), ind.IVs(), ind.Level(), ind.CP(), ind.HP(), ind.AttackStat(), ind.DefenseStat())
	return nil
}

func runDamage(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("damage")
	att := addSide(fs, "attacker")
	def := addSide(fs, "defender")
	mf := addMove(fs, "")
	if err := parse(fs, args); err != nil {
		return err
	}
	if att.name == "" || def.name == "" || mf.move == "" {
		return missing(fs, "attacker", "defender", "move")
	}
	move, capLimit, buffs, err := mf.resolve(e.Resolver)
	if err != nil {
		return err
	}
	a, err := e.Resolver.Individual(ctx, att.side(), capLimit)
	if err != nil {
		return fmt.Errorf("attacker: %w", err)
	}
	d, err := e.Resolver.Individual(ctx, def.side(), capLimit)
	if err != nil {
		return fmt.Errorf("defender: %w", err)
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "attacker\t%s\tL%s\tatk %.2f\n", report.BattlerFor(a.Species(), buffs.Attack), a.Level(), a.AttackStat())
	fmt.Fprintf(tw, "defender\t%s\tL%s\tdef %.2f\n", report.BattlerFor(d.Species(), buffs.Defense), d.Level(), d.DefenseStat())
	fmt.Fprintf(tw, "move\t%s\tstab %v\tx%g\n", move.Name(), damage.IsSTAB(move, a.Species()),
		typing.MoveEffectiveness(move.Type(), d.Species().Types))
	fmt.Fprintf(tw, "damage\t%d\n", damage.Calculate(move, a, d, buffs))
	return tw.Flush()
}

func runBulkpoints(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("bulkpoints")
	att := addSide(fs, "attacker")
	defender := fs.String("defender", "", "defender species id or name")
	defShadow := fs.Bool("defender-shadow", false, "use the shadow form of the defender")
	mf := addMove(fs, "great")
	rf := addReport(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if att.name == "" || *defender == "" || mf.move == "" {
		return missing(fs, "attacker", "defender", "move")
	}
	move, capLimit, buffs, err := mf.resolve(e.Resolver)
	if err != nil {
		return err
	}
	a, err := e.Resolver.Individual(ctx, att.side(), capLimit)
	if err != nil {
		return fmt.Errorf("attacker: %w", err)
	}
	defSpecies, err := e.Resolver.Species(*defender, *defShadow)
	if err != nil {
		return err
	}
	roster, err := e.Enumerator.Enumerate(ctx, defSpecies, capLimit)
	if err != nil {
		return err
	}
	cands, err := rf.apply(roster.Individuals())
	if err != nil {
		return err
	}
	ranges, err := e.Partitioner.Bulkpoints(a, cands, move, buffs)
	if err != nil {
		return err
	}
	return e.finish(ctx, rf, report.FromRanges(report.KindBulkpoints,
		report.BattlerFor(a.Species(), buffs.Attack), report.BattlerFor(defSpecies, buffs.Defense),
		move, capLimit, ranges))
}

func runBreakpoints(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("breakpoints")
	attacker := fs.String("attacker", "", "attacker species id or name")
	attShadow := fs.Bool("attacker-shadow", false, "use the shadow form of the attacker")
	def := addSide(fs, "defender")
	mf := addMove(fs, "great")
	rf := addReport(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if *attacker == "" || def.name == "" || mf.move == "" {
		return missing(fs, "attacker", "defender", "move")
	}
	move, capLimit, buffs, err := mf.resolve(e.Resolver)
	if err != nil {
		return err
	}
	attSpecies, err := e.Resolver.Species(*attacker, *attShadow)
	if err != nil {
		return err
	}
	d, err := e.Resolver.Individual(ctx, def.side(), capLimit)
	if err != nil {
		return fmt.Errorf("defender: %w", err)
	}
	roster, err := e.Enumerator.Enumerate(ctx, attSpecies, capLimit)
	if err != nil {
		return err
	}
	cands, err := rf.apply(roster.Individuals())
	if err != nil {
		return err
	}
	ranges, err := e.Partitioner.BreakpointsAgainst(cands, d, move, buffs)
	if err != nil {
		return err
	}
	return e.finish(ctx, rf, report.FromRanges(report.KindBreakpoints,
		report.BattlerFor(attSpecies, buffs.Attack), report.BattlerFor(d.Species(), buffs.Defense),
		move, capLimit, ranges))
}

func runVersus(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("vs")
	attacker := fs.String("attacker", "", "attacker species id or name")
	attShadow := fs.Bool("attacker-shadow", false, "use the shadow form of the attacker")
	defender := fs.String("defender", "", "defender species id or name")
	defShadow := fs.Bool("defender-shadow", false, "use the shadow form of the defender")
	mf := addMove(fs, "great")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *attacker == "" || *defender == "" || mf.move == "" {
		return missing(fs, "attacker", "defender", "move")
	}
	move, capLimit, buffs, err := mf.resolve(e.Resolver)
	if err != nil {
		return err
	}
	attSpecies, err := e.Resolver.Species(*attacker, *attShadow)
	if err != nil {
		return err
	}
	defSpecies, err := e.Resolver.Species(*defender, *defShadow)
	if err != nil {
		return err
	}
	ms, err := e.Partitioner.VersusDefender(ctx, attSpecies, defSpecies, move, capLimit, buffs)
	if err != nil {
		return err
	}
	for i, m := range ms {
		if i > 0 {
			fmt.Fprintln(e.stdout)
		}
		fmt.Fprintf(e.stdout, "== %s: %s L%s\n", m.Label, m.Defender.IVs(), m.Defender.Level())
		rep := report.FromRanges(report.KindBreakpoints,
			report.BattlerFor(attSpecies, buffs.Attack), report.BattlerFor(defSpecies, buffs.Defense),
			move, capLimit, m.Ranges)
		if err := report.Write(e.stdout, rep); err != nil {
			return err
		}
	}
	return nil
}

func runLeagues(_ context.Context, e *env, args []string) error {
	fs := e.flagSet("leagues")
	if err := parse(fs, args); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	for _, l := range e.Leagues.All() {
		names := make([]string, 0, len(l.Meta))
		for _, m := range l.Meta {
			names = append(names, m.Species.FullName())
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ID, l.Name, l.CapLimit, strings.Join(names, ", "))
	}
	return tw.Flush()
}

func runScript(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("script")
	list := fs.Bool("list", false, "list available scripts")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: pvpcalc script [-list] <name|path.lua> [args...]")
		fs.PrintDefaults()
	}
	if err := parse(fs, args); err != nil {
		return err
	}
	if *list {
		names, err := e.Runner.Scripts()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(e.stdout, n)
		}
		return nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	return e.Runner.RunFile(ctx, fs.Arg(0), fs.Args()[1:]...)
}
