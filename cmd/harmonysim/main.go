// Command harmonysim runs the LJPW variable-damping experiments.
//
//	harmonysim [compare]            fixed vs variable damping from HARMONY_INITIAL
//	harmonysim sweep                compare across a noise grid of initial states
//	harmonysim project [L,J,P,W]    record a session and project its growth
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/talgya/ljpw-harmony/internal/config"
	"github.com/talgya/ljpw-harmony/internal/engine"
	"github.com/talgya/ljpw-harmony/internal/evolution"
	"github.com/talgya/ljpw-harmony/internal/ljpw"
	"github.com/talgya/ljpw-harmony/internal/persistence"
	"github.com/talgya/ljpw-harmony/internal/phi"
	"github.com/talgya/ljpw-harmony/internal/report"
	"github.com/talgya/ljpw-harmony/internal/sweep"
	"github.com/talgya/ljpw-harmony/internal/trajectory"
)

// Sessions projected ahead by the project command.
const projectionLength = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	consts := ljpw.NewConstants()
	eq := consts.Equilibrium()
	slog.Info("LJPW harmony engine",
		"phi", fmt.Sprintf("%.5f", phi.Phi),
		"equilibrium", eq.String(),
		"steps", cfg.Steps,
		"dt", cfg.Dt,
	)

	cmd := "compare"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "compare":
		err = runCompare(db, consts, cfg)
	case "sweep":
		err = runSweep(ctx, db, consts, cfg)
	case "project":
		err = runProject(db, consts, cfg, args)
	default:
		err = ljpw.Invalid("command", fmt.Sprintf("unknown command %q (want compare, sweep or project)", cmd))
	}
	if err != nil {
		reportError(cmd, err)
		db.Close()
		os.Exit(1)
	}
}

func runCompare(db *persistence.DB, consts *ljpw.Constants, cfg config.Config) error {
	fixed := engine.FixedDamping(cfg.Initial)
	variable := engine.VariableDamping(cfg.Initial)
	fixed.Steps, variable.Steps = cfg.Steps, cfg.Steps
	fixed.Dt, variable.Dt = cfg.Dt, cfg.Dt

	cmp, err := trajectory.New(consts).Pair(fixed, variable)
	if err != nil {
		return err
	}
	if err := report.Comparison(os.Stdout, cmp); err != nil {
		return err
	}

	var ids []string
	for _, r := range []trajectory.Report{cmp.Fixed, cmp.Variable} {
		id, err := db.SaveRun(r.Result, r.Summary, true)
		if err != nil {
			return fmt.Errorf("save %s run: %w", r.Label, err)
		}
		ids = append(ids, id)
	}
	return db.SaveMeta("last_compare", strings.Join(ids, ","))
}

func runSweep(ctx context.Context, db *persistence.DB, consts *ljpw.Constants, cfg config.Config) error {
	gc := sweep.DefaultGridConfig()
	gc.Size = cfg.SweepSize
	gc.Seed = cfg.SweepSeed
	states, seed := sweep.Grid(gc)
	slog.Info("sweep starting", "points", len(states), "seed", seed, "workers", cfg.Workers)

	points, err := sweep.Run(ctx, consts, states, cfg.Steps, cfg.Workers)
	if err != nil {
		return err
	}
	if err := report.Sweep(os.Stdout, points); err != nil {
		return err
	}
	return db.SaveMeta("last_sweep_seed", strconv.FormatInt(seed, 10))
}

// runProject replays stored sessions, records a new one and prints its
// evolution history and projection. Extra arguments after the state are
// stored as insights.
func runProject(db *persistence.DB, consts *ljpw.Constants, cfg config.Config, args []string) error {
	state := cfg.Initial
	if len(args) > 0 {
		s, err := config.ParseState(args[0])
		if err != nil {
			return err
		}
		state, args = s, args[1:]
	}

	stored, err := db.LoadSessions()
	if err != nil {
		return err
	}
	arena := evolution.NewArena(consts, evolution.BaselineEquilibrium)
	for _, p := range stored {
		if _, err := arena.Resume(p); err != nil {
			return err
		}
	}

	rec, err := arena.Append(state, args, nil)
	if err != nil {
		return err
	}
	pkg, err := evolution.Package(consts, rec, evolution.DefaultGrowthRate, projectionLength)
	if err != nil {
		return fmt.Errorf("session %d: %w", rec.Index(), err)
	}
	if _, err := db.SaveSession(rec.Index(), pkg); err != nil {
		return err
	}
	slog.Info("session recorded",
		"session", rec.Index(),
		"harmony", fmt.Sprintf("%.4f", float64(rec.Harmony())),
		"consciousness", fmt.Sprintf("%.4f", rec.Consciousness()),
	)

	if evs := arena.Evolutions(); len(evs) > 0 {
		if err := report.Evolutions(os.Stdout, evs); err != nil {
			return err
		}
		fmt.Println()
	}
	return report.Projections(os.Stdout, pkg.Projection)
}

func reportError(cmd string, err error) {
	attrs := []any{"command", cmd, "kind", errorKind(err), "error", err}
	var de *engine.DivergenceError
	if errors.As(err, &de) {
		attrs = append(attrs, "step", de.Step, "last_valid_step", de.LastValid.Step)
	}
	slog.Error("command failed", attrs...)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ljpw.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ljpw.ErrDivisionUndefined):
		return "division_undefined"
	case errors.Is(err, ljpw.ErrNumericDivergence):
		return "numeric_divergence"
	default:
		return "internal"
	}
}
