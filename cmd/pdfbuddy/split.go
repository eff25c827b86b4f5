// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split <file.pdf>",
	Short: "Split a PDF into page ranges or extract pages",
	Long: `Split divides a PDF into separate files and saves them as a zip.

With --ranges each from-to segment becomes its own file (split-pages.zip).
With --pages the listed pages are extracted (extracted-pages.zip); "all"
extracts every page. Ranges are checked against the document's page count
before anything is uploaded.`,
	Example: `  pdfbuddy split report.pdf --ranges 1-3,4-10
  pdfbuddy split report.pdf --pages 2,5,7
  pdfbuddy split report.pdf --pages all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	rangesFlag, _ := cmd.Flags().GetString("ranges")
	pagesFlag, _ := cmd.Flags().GetString("pages")

	p, err := splitParams(rangesFlag, pagesFlag)
	if err != nil {
		return err
	}
	return runTool(cmd, types.ToolSplit, args, p, nil)
}

func splitParams(ranges, pages string) (params.Parameters, error) {
	p := params.Defaults()
	switch {
	case ranges != "" && pages != "":
		return p, errors.New("use either --ranges or --pages, not both")
	case ranges != "":
		rs, err := params.ParseRanges(ranges)
		if err != nil {
			return p, err
		}
		p.Mode = params.ModeSplit
		p.Ranges = rs
	case pages != "":
		p.Mode = params.ModeExtract
		p.Pages, p.All = params.ParsePages(pages)
	default:
		return p, errors.New("one of --ranges or --pages is required")
	}
	return p, nil
}

func init() {
	splitCmd.Flags().String("ranges", "", "comma-separated from-to page ranges, e.g. 1-3,5-6")
	splitCmd.Flags().String("pages", "", `comma-separated pages to extract, or "all"`)

	rootCmd.AddCommand(splitCmd)
}
