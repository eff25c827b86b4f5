// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/catalog"
	"github.com/pdiddy/pdfbuddy/internal/convert"
	"github.com/pdiddy/pdfbuddy/internal/history"
	"github.com/pdiddy/pdfbuddy/internal/intake"
	"github.com/pdiddy/pdfbuddy/internal/invoke"
	"github.com/pdiddy/pdfbuddy/internal/logging"
	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/internal/present"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var errNoBaseURL = errors.New("no API base URL: set --base-url, PDFBUDDY_BASE_URL or http.base_url in pdfbuddy.yaml")

// lookupTool resolves a tool id or route against the embedded catalog.
func lookupTool(key string) (types.ToolDescriptor, error) {
	c, err := catalog.Default()
	if err != nil {
		return types.ToolDescriptor{}, err
	}
	d, ok := c.Lookup(key)
	if !ok {
		return types.ToolDescriptor{}, fmt.Errorf("unknown tool %q (see pdfbuddy tools)", key)
	}
	return d, nil
}

// newRunner wires a runner for tool from the loaded configuration. The
// returned cleanup closes the history database.
func newRunner(cmd *cobra.Command, tool types.ToolDescriptor, p params.Parameters) (*convert.Runner, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.HTTP.BaseURL == "" {
		return nil, nil, errNoBaseURL
	}

	r := &convert.Runner{
		Tool:      tool,
		Invoker:   invoke.New(cfg.HTTP, invoke.WithLogger(logging.WithComponent("invoke"))),
		Presenter: present.New(cmd.OutOrStdout(), present.WithLogger(logging.WithComponent("present"))),
		Params:    p,
		Progress:  cfg.Progress,
		Output:    cfg.Output,
		Logger:    logging.WithComponent("lifecycle"),
	}

	cleanup := func() {}
	if cfg.History.Path != "" {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			log := logging.WithComponent("cli")
			log.Warn().Err(err).Msg("job history unavailable")
		} else {
			r.Recorder = store
			cleanup = func() { store.Close() }
		}
	}
	return r, cleanup, nil
}

// runTool stages paths for tool and runs it. Several inputs to a
// single-input tool run as a batch.
func runTool(cmd *cobra.Command, id types.ToolID, paths []string, p params.Parameters, order []int) error {
	tool, err := lookupTool(string(id))
	if err != nil {
		return err
	}
	raw, err := intake.FromPaths(paths)
	if err != nil {
		return err
	}

	r, cleanup, err := newRunner(cmd, tool, p)
	if err != nil {
		return err
	}
	defer cleanup()
	r.Order = order

	if !tool.MultiInput && len(raw) > 1 {
		result := r.RunBatch(cmd.Context(), raw, cmd.OutOrStdout())
		if result.HasFailures() {
			return fmt.Errorf("%d of %d file(s) failed", result.Failed, result.Total())
		}
		return nil
	}

	if _, err := r.Run(cmd.Context(), raw, ""); err != nil {
		return err
	}
	return nil
}
