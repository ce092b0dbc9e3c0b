package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shoebox/internal/category"
	"shoebox/internal/config"
	"shoebox/internal/faults"
	"shoebox/internal/planner"
	"shoebox/internal/resolver"
)

type planFlags struct {
	by         string
	yearParent bool
	exclude    []string
	format     string
	limit      int
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.by, "by", "", "Grouping granularity: yearly, monthly, daily, or seasonal")
	cmd.Flags().BoolVar(&f.yearParent, "year-parent", false, "Nest monthly, daily, and seasonal folders under a year folder")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Directory to skip while scanning (repeatable)")
	cmd.Flags().StringVar(&f.format, "format", "table", "Output format: table, json, or yaml")
	cmd.Flags().IntVar(&f.limit, "limit", -1, "Photos listed per folder in table output (0 lists all)")
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan [SOURCE]",
		Short: "Show how photos would be organized without touching them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(flags.format)
			if err != nil {
				return faults.Wrap(faults.ErrValidation, "plan", "parse flags", "", err)
			}
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyPlanFlags(cmd, base, args, &flags)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			plan, err := buildPlan(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			if format != formatTable {
				return writeStructured(cmd, format, newPlanView(plan))
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprint(out, renderPlan(plan, cfg.TargetRoot(), previewLimit(cfg, &flags), colorize))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// applyPlanFlags returns a copy of base with the source argument and plan
// flags applied.
func applyPlanFlags(cmd *cobra.Command, base *config.Config, args []string, flags *planFlags) (*config.Config, error) {
	cfg := *base
	cfg.Organize.ExcludeDirs = append([]string(nil), base.Organize.ExcludeDirs...)

	if len(args) > 0 {
		source, err := config.ExpandPath(strings.TrimSpace(args[0]))
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "plan", "resolve source", args[0], err)
		}
		cfg.Paths.SourceDir = source
	}
	if strings.TrimSpace(cfg.Paths.SourceDir) == "" {
		return nil, faults.Wrap(faults.ErrValidation, "plan", "resolve source", "no source directory (pass SOURCE or set paths.source_dir)", nil)
	}
	if cmd.Flags().Changed("by") {
		g, err := category.ParseGranularity(flags.by)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "plan", "parse flags", "", err)
		}
		cfg.Organize.Granularity = string(g)
	}
	if cmd.Flags().Changed("year-parent") {
		cfg.Organize.YearAsParent = flags.yearParent
	}
	for _, dir := range flags.exclude {
		if dir = strings.TrimSpace(dir); dir != "" {
			cfg.Organize.ExcludeDirs = append(cfg.Organize.ExcludeDirs, dir)
		}
	}
	return &cfg, nil
}

func previewLimit(cfg *config.Config, flags *planFlags) int {
	if flags.limit >= 0 {
		return flags.limit
	}
	return cfg.Organize.PreviewLimit
}

// buildPlan scans the configured source. A target nested inside the source
// is excluded so organized folders are never re-planned.
func buildPlan(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*planner.Plan, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fs := afero.NewOsFs()
	exclude := append([]string(nil), cfg.Organize.ExcludeDirs...)
	source := filepath.Clean(cfg.Paths.SourceDir)
	target := filepath.Clean(cfg.TargetRoot())
	if target != source && isWithin(source, target) {
		exclude = append(exclude, target)
	}

	res := resolver.New(fs, resolver.WithLogger(logger))
	p := planner.New(fs, res, logger)
	return p.Plan(ctx, planner.Options{
		Root:         source,
		Granularity:  cfg.GranularityValue(),
		YearAsParent: cfg.Organize.YearAsParent,
		ExcludeDirs:  exclude,
	})
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
