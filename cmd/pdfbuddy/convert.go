// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/params"
)

var convertCmd = &cobra.Command{
	Use:   "convert <tool> <file>...",
	Short: "Convert between PDF and Office formats",
	Long: `Convert runs one of the format conversion tools:

  pdf-to-word, pdf-to-excel, pdf-to-powerpoint,
  word-to-pdf, powerpoint-to-pdf, excel-to-pdf

The tool may also be given as its route (/pdf-to-word). Several input files
are converted one by one and each result is named after its input.`,
	Example: `  pdfbuddy convert pdf-to-word contract.pdf
  pdfbuddy convert excel-to-pdf q1.xlsx q2.xlsx -o out/`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, err := lookupTool(args[0])
		if err != nil {
			return err
		}
		return runTool(cmd, tool.ID, args[1:], params.Defaults(), nil)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
