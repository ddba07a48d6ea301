// Package main provides pvpcalc, the command-line front end of the damage
// engine: level searches, single-hit damage, bulkpoint and breakpoint reports,
// and Lua report scripts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// errUsage is returned after a usage message has been printed.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"maxlevel", "highest level of a spread under a CP cap", runMaxLevel},
	{"damage", "damage of one hit", runDamage},
	{"bulkpoints", "partition a defender's IV spreads by damage taken", runBulkpoints},
	{"breakpoints", "partition an attacker's IV spreads by damage dealt", runBreakpoints},
	{"vs", "attacker breakpoints against the min, rank 1 and max defense defenders", runVersus},
	{"leagues", "list leagues and their meta rosters", runLeagues},
	{"script", "run or list Lua report scripts", runScript},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "pvpcalc: %v\n", err)
		os.Exit(1)
	}
}

// run parses the global flags, builds the engine and dispatches to a command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pvpcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "configs/dev.yaml", "path to configuration file")
	fs.Usage = func() { usage(fs, stderr) }
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	name := fs.Arg(0)
	idx := -1
	for i, c := range commands {
		if c.name == name {
			idx = i
		}
	}
	if idx < 0 {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return errUsage
	}

	e, cleanup, err := newEnv(ctx, *configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer cleanup()
	return commands[idx].run(ctx, e, fs.Args()[1:])
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: pvpcalc [-config path] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fs.PrintDefaults()
}
