// Package watchcmder provides the watch command for following tree file
// changes as they happen.
package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/logger"
	"github.com/opsbrain/dtree/pkg/watch"
)

const watchLongDesc string = `Follow a project's tree directory and report tree file changes.

Runs until interrupted. Every create, write, rename, or remove of a tree
file is reported; lock files, checkpoints, and editor temp files are
ignored. With --log-file, events are additionally written as JSON lines
for downstream tooling.

Examples:
  dtree watch
  dtree watch --project myproject --log-file /tmp/dtree-events.log`

const watchShortDesc string = "Follow tree file changes"

type watchCommander struct {
	project string
	logFile string
}

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), settings)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append events as JSON lines to this file")

	return cmd
}

func (c *watchCommander) run(parent context.Context, settings *wire.Settings) error {
	dir := settings.ProjectDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	log := settings.Logger()
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		jsonLog := logger.New(logger.WithDebug(settings.Debug), logger.WithJSON(true), logger.WithWriter(f))
		log = logger.Multi(log, jsonLog)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := watch.New(dir, log)
	err := watcher.Run(ctx, func(e watch.Event) {
		log.Info("tree changed", "file", filepath.Base(e.Path), "op", e.Op)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
