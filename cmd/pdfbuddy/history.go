// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/history"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past jobs",
	Long: `History lists jobs recorded in the local history database, newest
first, with their outcome and where the result was saved. Filters narrow
the list by tool, state or input file name.`,
	RunE: runHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export job history to YAML or JSON on stdout",
	RunE:  runHistoryExport,
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.Path == "" {
		return nil, errors.New("job history is disabled")
	}
	return history.NewStore(cfg.History)
}

func historyQuery(cmd *cobra.Command) history.Query {
	tool, _ := cmd.Flags().GetString("tool")
	state, _ := cmd.Flags().GetString("state")
	input, _ := cmd.Flags().GetString("input")
	limit, _ := cmd.Flags().GetInt("limit")
	return history.Query{
		Tool:  types.ToolID(tool),
		State: types.LifecycleState(state),
		Input: input,
		Limit: limit,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	jobs, err := store.List(cmd.Context(), historyQuery(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if jobs == nil {
			jobs = []history.Job{}
		}
		return writeJSON(out, jobs)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-19s  %-18s  %-10s  %-30s  %s\n", "Started", "Tool", "State", "Inputs", "Result")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, j := range jobs {
		inputs := strings.Join(j.Inputs, ", ")
		if len(inputs) > 30 {
			inputs = inputs[:27] + "..."
		}
		result := j.Output
		if j.State == types.StateFailed {
			result = j.Message
			if j.Code != nil {
				result = fmt.Sprintf("%s (code %d)", j.Message, *j.Code)
			}
		}
		fmt.Fprintf(out, "%-19s  %-18s  %-10s  %-30s  %s\n",
			j.StartedAt.Local().Format("2006-01-02 15:04:05"), j.Tool, j.State, inputs, result)
	}
	fmt.Fprintf(out, "\n%d jobs\n", len(jobs))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	q := historyQuery(cmd)
	switch format {
	case "yaml", "":
		return store.ExportYAML(cmd.Context(), cmd.OutOrStdout(), q)
	case "json":
		return store.ExportJSON(cmd.Context(), cmd.OutOrStdout(), q)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	// Shared filter flags on the parent command, inherited by export.
	historyCmd.PersistentFlags().String("tool", "", "filter by tool id")
	historyCmd.PersistentFlags().String("state", "", "filter by state: submitting, succeeded, failed")
	historyCmd.PersistentFlags().String("input", "", "filter by input file name substring")
	historyCmd.Flags().Int("limit", 0, "maximum jobs to list (0 = use default)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
