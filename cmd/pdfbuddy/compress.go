// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var compressCmd = &cobra.Command{
	Use:   "compress <file.pdf>...",
	Short: "Reduce the file size of PDFs",
	Long: `Compress uploads a PDF and saves the smaller copy as compressed.pdf.
High compression trades quality for size; low keeps more detail. Several
files are compressed one after another.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("level")
		level, err := params.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		p := params.Defaults()
		p.Level = level
		return runTool(cmd, types.ToolCompress, args, p, nil)
	},
}

func init() {
	compressCmd.Flags().String("level", string(params.LevelHigh), "compression level: high or low")

	rootCmd.AddCommand(compressCmd)
}
