// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuddy/internal/convert"
	"github.com/pdiddy/pdfbuddy/internal/dropzone"
	"github.com/pdiddy/pdfbuddy/internal/lifecycle"
	"github.com/pdiddy/pdfbuddy/internal/logging"
	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <tool> [dir]",
	Short: "Run a tool on every file dropped into a directory",
	Long: `Watch turns a directory into a drop zone. Files copied into it are
staged once the directory has been quiet for the settle period and then
submitted to the tool. Merge combines everything dropped at once; other
tools process each file separately.

The directory defaults to watch.dir from the configuration. Results go to
the output directory, which must differ from the watched one. Stop with
Ctrl-C.`,
	Example: `  pdfbuddy watch compress ~/Drop -o ~/Compressed
  pdfbuddy watch merge ./inbox -o ./merged --overwrite`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	tool, err := lookupTool(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 2 {
		cfg.Watch.Dir = args[1]
	}
	if cfg.Watch.Dir == "" {
		return errors.New("no directory to watch: pass one or set watch.dir")
	}
	if err := checkSeparateDirs(cfg.Watch.Dir, cfg.Output.Dir); err != nil {
		return err
	}
	if tool.HasParam("range") {
		return fmt.Errorf("%s needs page ranges and cannot run from a drop zone", tool.Title)
	}

	r, cleanup, err := newRunner(cmd, tool, params.Defaults())
	if err != nil {
		return err
	}
	defer cleanup()

	ctrl := r.NewController()
	defer ctrl.Dispose()

	log := logging.WithComponent("watch")
	ctrl.Intake().Subscribe(func(files []types.StagedFile) {
		log.Debug().Int("staged", len(files)).Msg("drop zone selection changed")
	})
	stage := dropzone.Feed(ctrl.Intake(), func(rejected []types.RawFile) {
		log.Warn().Err(r.Rejected(rejected)).Msg("ignoring dropped files")
	})

	w := dropzone.New(cfg.Watch, log)
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for %s. Press Ctrl-C to stop.\n", w.Dir(), tool.Title)

	return w.Run(cmd.Context(), func(files []types.RawFile) {
		if tool.MultiInput {
			stage(files)
			submitStaged(cmd.Context(), r, ctrl, "")
			return
		}
		for _, f := range files {
			stage([]types.RawFile{f})
			submitStaged(cmd.Context(), r, ctrl, convert.BatchName(f.Name, tool.Filename))
		}
	})
}

// submitStaged runs whatever is staged and returns the controller to
// collecting with an empty staged set for the next drop.
func submitStaged(ctx context.Context, r *convert.Runner, ctrl *lifecycle.Controller, outName string) {
	log := logging.WithComponent("watch")
	if ctrl.Intake().Len() == 0 {
		return
	}
	if _, err := r.Submit(ctx, ctrl, outName); err != nil && !errors.Is(err, convert.ErrFailed) {
		log.Error().Err(err).Msg("submission")
	}
	if err := ctrl.Reset(true); err != nil {
		log.Error().Err(err).Msg("reset after submission")
	}
}

func checkSeparateDirs(watchDir, outDir string) error {
	if outDir == "" {
		outDir = "."
	}
	a, err := filepath.Abs(watchDir)
	if err != nil {
		return err
	}
	b, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("output directory %s is the watched directory; pass -o", outDir)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
