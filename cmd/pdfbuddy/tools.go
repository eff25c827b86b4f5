// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/catalog"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var toolsCmd = &cobra.Command{
	Use:   "tools [tool]",
	Short: "List the available tools",
	Long: `Tools prints the tool catalog: id, route, accepted inputs and the
endpoint each tool calls. Given a tool id or route it prints that tool's
card (title, subtitle and accent colours). Unknown routes show the generic
card.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTools,
}

// toolCard is the JSON shape of one catalog entry.
type toolCard struct {
	types.ToolDescriptor
	Accent       string `json:"accent"`
	SubtitleText string `json:"subtitle_color"`
}

func cardFor(d types.ToolDescriptor) toolCard {
	accent := catalog.AccentColor(d)
	return toolCard{ToolDescriptor: d, Accent: accent, SubtitleText: catalog.ContrastTextColor(accent)}
}

func runTools(cmd *cobra.Command, args []string) error {
	c, err := catalog.Default()
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		card := cardFor(c.Display(args[0]))
		if jsonOutput {
			return writeJSON(out, card)
		}
		fmt.Fprintf(out, "%s\n%s\n", card.Title, card.Subtitle)
		fmt.Fprintf(out, "accent %s, subtitle %s\n", card.Accent, card.SubtitleText)
		return nil
	}

	all := c.All()
	if jsonOutput {
		cards := make([]toolCard, len(all))
		for i, d := range all {
			cards[i] = cardFor(d)
		}
		return writeJSON(out, cards)
	}

	fmt.Fprintf(out, "%-18s  %-20s  %-12s  %s\n", "Tool", "Route", "Accepts", "Endpoint")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, d := range all {
		fmt.Fprintf(out, "%-18s  %-20s  %-12s  %s\n", d.ID, d.Route, strings.Join(d.Accept, ","), d.Endpoint)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	toolsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(toolsCmd)
}
