package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shoebox/internal/config"
	"shoebox/internal/faults"
	"shoebox/internal/journal"
	"shoebox/internal/logging"
	"shoebox/internal/metrics"
	"shoebox/internal/organizer"
	"shoebox/internal/planner"
	"shoebox/internal/preflight"
)

type organizeFlags struct {
	plan        planFlags
	target      string
	move        bool
	dryRun      bool
	onCollision string
	metricsFile string
	noJournal   bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var flags organizeFlags

	cmd := &cobra.Command{
		Use:   "organize [SOURCE]",
		Short: "Copy or move photos into date folders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(flags.plan.format)
			if err != nil {
				return faults.Wrap(faults.ErrValidation, "organize", "parse flags", "", err)
			}
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyOrganizeFlags(cmd, base, args, &flags)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			outcome, err := runOrganize(cmd.Context(), cfg, flags.dryRun, logger)
			if outcome == nil {
				return err
			}
			if format != formatTable {
				if writeErr := writeStructured(cmd, format, newOrganizeView(outcome)); writeErr != nil {
					return writeErr
				}
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderOrganize(outcome, shouldColorize(cmd.OutOrStdout())))
			return err
		},
	}
	flags.plan.register(cmd)
	cmd.Flags().StringVar(&flags.target, "target", "", "Directory that receives the date folders (defaults to the source)")
	cmd.Flags().BoolVar(&flags.move, "move", false, "Move photos instead of copying them")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Compute placements without touching the disk")
	cmd.Flags().StringVar(&flags.onCollision, "on-collision", "", "When a destination exists: rename, skip, or overwrite")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&flags.noJournal, "no-journal", false, "Do not record this run in the journal")
	return cmd
}

func applyOrganizeFlags(cmd *cobra.Command, base *config.Config, args []string, flags *organizeFlags) (*config.Config, error) {
	cfg, err := applyPlanFlags(cmd, base, args, &flags.plan)
	if err != nil {
		return nil, err
	}
	if target := strings.TrimSpace(flags.target); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "organize", "resolve target", target, err)
		}
		cfg.Paths.TargetDir = expanded
	}
	if cmd.Flags().Changed("move") {
		cfg.Organize.Mode = config.ModeCopy
		if flags.move {
			cfg.Organize.Mode = config.ModeMove
		}
	}
	if cmd.Flags().Changed("on-collision") {
		policy, err := organizer.ParseCollisionPolicy(flags.onCollision)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "organize", "parse flags", "", err)
		}
		cfg.Organize.OnCollision = string(policy)
	}
	if path := strings.TrimSpace(flags.metricsFile); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "organize", "resolve metrics file", path, err)
		}
		cfg.Metrics.Textfile = expanded
	}
	if flags.noJournal {
		cfg.Journal.Enabled = false
	}
	return cfg, nil
}

type organizeOutcome struct {
	RunID     string
	Plan      *planner.Plan
	Result    organizer.Result
	DryRun    bool
	Target    string
	Preflight []preflight.Result
	Journaled bool
}

// runOrganize plans, checks, applies, journals, and exports metrics for one
// run. A nil outcome means nothing was attempted.
func runOrganize(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (*organizeOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "cli"))

	policy, err := organizer.ParseCollisionPolicy(cfg.Organize.OnCollision)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "organize", "collision policy", "", err)
	}

	plan, err := buildPlan(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	outcome := &organizeOutcome{RunID: runID, Plan: plan, DryRun: dryRun, Target: cfg.TargetRoot()}

	outcome.Preflight = preflight.RunAll(cfg, plan)
	if failed := preflight.Failed(outcome.Preflight); len(failed) > 0 && !dryRun {
		names := make([]string, 0, len(failed))
		for _, r := range failed {
			names = append(names, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return outcome, faults.Wrap(faults.ErrValidation, "organize", "preflight", strings.Join(names, "; "), nil)
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg)
		if err != nil {
			logging.WarnWithContext(log, "journal unavailable; continuing without it", "journal_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
			)
			store = nil
		} else {
			defer store.Close()
		}
	}
	if store != nil {
		_, err := store.StartRun(ctx, journal.RunSpec{
			ID:           runID,
			Source:       plan.Root,
			Target:       outcome.Target,
			Granularity:  plan.Granularity,
			YearAsParent: plan.YearAsParent,
			Mode:         cfg.Organize.Mode,
			OnCollision:  string(policy),
			DryRun:       dryRun,
			Stats:        plan.Stats,
		})
		if err != nil {
			logging.WarnWithContext(log, "journal start failed", "journal_write_failed", logging.Error(err))
			store = nil
		}
	}

	result, applyErr := organizer.New(logger).Apply(ctx, plan, organizer.Options{
		Target:      outcome.Target,
		Move:        cfg.MoveFiles(),
		DryRun:      dryRun,
		OnCollision: policy,
	})
	outcome.Result = result

	if store != nil {
		// Record what happened even when the run was cancelled.
		journalCtx := context.WithoutCancel(ctx)
		if err := store.RecordPlacements(journalCtx, runID, result.Placements); err != nil {
			logging.WarnWithContext(log, "journal placements not recorded", "journal_write_failed", logging.Error(err))
		}
		if err := store.FinishRun(journalCtx, runID, result, applyErr); err != nil {
			logging.WarnWithContext(log, "journal finish failed", "journal_write_failed", logging.Error(err))
		} else {
			outcome.Journaled = true
		}
	}

	if path := cfg.Metrics.Textfile; path != "" {
		m := metrics.New()
		m.ObservePlan(plan.Stats)
		m.ObserveResult(result)
		m.ObserveRun(time.Since(started), time.Now())
		if err := m.WriteTextfile(path); err != nil {
			logging.WarnWithContext(log, "metrics export failed", "metrics_write_failed",
				logging.Error(err),
				logging.String("path", path),
			)
		}
	}

	return outcome, applyErr
}
