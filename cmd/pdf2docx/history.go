// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2docx/internal/convert"
	"github.com/pdiddy/pdf2docx/internal/history"
	"github.com/pdiddy/pdf2docx/pkg/types"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs",
		Long: `History lists the conversions recorded in the SQLite database named by
--history-db (or history_db in the config file), newest first. With --export
it writes the whole history to stdout as YAML or JSON instead.`,
		Args: noArgs,
		RunE: a.runHistory,
	}
	cmd.Flags().Int("limit", 0, "maximum runs to list (0 = use history_max_results)")
	cmd.Flags().Bool("json", false, "output runs as JSON")
	cmd.Flags().String("export", "", "export the full history as yaml or json")

	return cmd
}

func (a *app) openHistory() (*history.Store, error) {
	store, err := history.NewStore(a.config().History)
	if errors.Is(err, history.ErrDisabled) {
		return nil, fmt.Errorf("%w: set --history-db or history_db", err)
	}
	return store, err
}

func (a *app) runHistory(cmd *cobra.Command, args []string) error {
	if format, _ := cmd.Flags().GetString("export"); format != "" {
		return a.exportHistory(cmd, format)
	}
	return a.listHistory(cmd)
}

func (a *app) listHistory(cmd *cobra.Command) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		if records == nil {
			records = []types.ConversionRecord{}
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(a.stdout, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(a.stdout, "%-5s  %-9s  %-11s  %-7s  %-20s  %-9s  %s\n",
		"ID", "Status", "Backend", "Pages", "Started", "Duration", "Files")
	fmt.Fprintln(a.stdout, strings.Repeat("-", 100))
	for _, r := range records {
		pages := convert.PageRange{Start: r.StartPage, End: r.EndPage}.String()
		fmt.Fprintf(a.stdout, "%-5d  %-9s  %-11s  %-7s  %-20s  %-9s  %s -> %s\n",
			r.ID, r.Status, r.Backend, pages,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration.Round(time.Millisecond),
			r.InputPath, r.OutputPath)
		if r.Error != "" {
			fmt.Fprintf(a.stdout, "       error: %s\n", r.Error)
		}
	}
	fmt.Fprintf(a.stdout, "\n%d runs\n", len(records))
	return nil
}

func (a *app) exportHistory(cmd *cobra.Command, format string) error {
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if format == "json" {
		return store.ExportJSON(cmd.Context(), a.stdout)
	}
	return store.ExportYAML(cmd.Context(), a.stdout)
}
