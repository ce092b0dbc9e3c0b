package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shoebox/internal/faults"
	"shoebox/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled organize runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return faults.Wrap(faults.ErrValidation, "history", "parse flags", "", err)
			}
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if outFormat != formatTable {
					if runs == nil {
						runs = []journal.Run{}
					}
					return writeStructured(cmd, outFormat, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet.")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 lists all)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, or yaml")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show the placements of one run (a unique id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return faults.Wrap(faults.ErrValidation, "history", "parse flags", "", err)
			}
			return ctx.withJournal(func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, journal.ErrRunNotFound) || errors.Is(err, journal.ErrAmbiguousRunID) {
						return faults.Wrap(faults.ErrValidation, "history", "lookup run", "", err)
					}
					return err
				}
				placements, err := store.Placements(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if outFormat != formatTable {
					if placements == nil {
						placements = []journal.Placement{}
					}
					return writeStructured(cmd, outFormat, struct {
						Run        *journal.Run        `json:"run" yaml:"run"`
						Placements []journal.Placement `json:"placements" yaml:"placements"`
					}{run, placements})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderRunDetail(run, placements, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, or yaml")
	return cmd
}

// withJournal opens the journal read side. A journal that was never created
// is reported instead of being created empty.
func (c *commandContext) withJournal(fn func(*journal.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.JournalPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return faults.Wrap(faults.ErrValidation, "history", "open journal", "no journal at "+cfg.JournalPath()+"; run `shoebox organize` first", nil)
		}
		return err
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func renderRunsTable(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := run.Mode
		if run.DryRun {
			mode += " (dry run)"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			string(run.Status),
			run.Granularity,
			mode,
			formatCount(run.Categorized),
			formatCount(run.Copied + run.Moved),
			formatCount(run.Failed),
			run.Target,
		})
	}
	return renderTable(tableSpec{
		headers: []string{"Run", "Started", "Status", "Granularity", "Mode", "Planned", "Placed", "Failed", "Target"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	})
}

func renderRunDetail(run *journal.Run, placements []journal.Placement, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		b.WriteString(line + "\n")
	}
	statusKindForRun := statusOK
	switch run.Status {
	case journal.StatusFailed:
		statusKindForRun = statusError
	case journal.StatusRunning:
		statusKindForRun = statusWarn
	}
	lines := []string{
		renderStatusLine("Status", statusKindForRun, string(run.Status), colorize),
		renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.RFC1123), colorize),
	}
	if run.FinishedAt != nil {
		lines = append(lines, renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize))
	}
	lines = append(lines,
		renderStatusLine("Source", statusInfo, run.Source, colorize),
		renderStatusLine("Target", statusInfo, run.Target, colorize),
		renderStatusLine("Granularity", statusInfo, fmt.Sprintf("%s (%s)", run.Granularity, run.Layout), colorize),
		renderStatusLine("Mode", statusInfo, run.Mode, colorize),
		renderStatusLine("On collision", statusInfo, run.OnCollision, colorize),
		renderStatusLine("Dry run", statusInfo, yesNo(run.DryRun), colorize),
	)
	if run.ErrorMessage != "" {
		lines = append(lines, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if len(placements) == 0 {
		b.WriteString("No placements recorded.\n")
		return b.String()
	}
	rows := make([][]string, 0, len(placements))
	for _, p := range placements {
		dest := p.Destination
		if p.Error != "" {
			dest = p.Error
		}
		rows = append(rows, []string{
			string(p.Action),
			p.TakenAt.Format(dateDisplayLayout),
			string(p.DateSource),
			p.Source,
			dest,
		})
	}
	b.WriteString(renderTable(tableSpec{
		headers: []string{"Action", "Taken", "Date source", "Source", "Destination"},
		rows:    rows,
	}))
	b.WriteString("\n")
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
