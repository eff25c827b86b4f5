// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <file.pdf>...",
	Short: "Combine PDFs in the order given",
	Long: `Merge uploads the PDFs and saves the combined document as merged.pdf
in the output directory. Files are attached in argument order; --order
rearranges them without retyping the paths.`,
	Example: `  pdfbuddy merge intro.pdf body.pdf appendix.pdf
  pdfbuddy merge a.pdf b.pdf c.pdf --order 3,1,2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	orderFlag, _ := cmd.Flags().GetString("order")
	order, err := parseOrder(orderFlag)
	if err != nil {
		return err
	}
	return runTool(cmd, types.ToolMerge, args, params.Defaults(), order)
}

// parseOrder reads a comma-separated list of 1-based positions.
func parseOrder(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var order []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid --order position %q", part)
		}
		order = append(order, n)
	}
	return order, nil
}

func init() {
	mergeCmd.Flags().String("order", "", "submission order as 1-based positions, e.g. 3,1,2")

	rootCmd.AddCommand(mergeCmd)
}
