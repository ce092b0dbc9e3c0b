package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoebox/internal/faults"
	"shoebox/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var flags organizeFlags

	cmd := &cobra.Command{
		Use:   "preflight [SOURCE]",
		Short: "Check directories and free space before organizing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			// Free space is sized from a real plan when the source can be scanned.
			plan, planErr := buildPlan(cmd.Context(), cfg, logger)
			if planErr != nil {
				plan = nil
			}
			results := preflight.RunAll(cfg, plan)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Preflight", colorize))
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if plan != nil {
				fmt.Fprintln(out, renderStatusLine("Planned photos", statusInfo, formatCount(plan.Stats.Categorized), colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return faults.Wrap(faults.ErrValidation, "preflight", "check", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.target, "target", "", "Directory that would receive the date folders")
	cmd.Flags().BoolVar(&flags.move, "move", false, "Check for a move instead of a copy")
	return cmd
}
