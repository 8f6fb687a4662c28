package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover sessions and run the pipeline",
		Long: "Scans the data directory for session source files, registers them in\n" +
			"the catalog and advances every session through merge, link, align,\n" +
			"ner and publish. With --interval the scan repeats until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(cfg *config.Config, store *catalog.Store, manager *workflow.Manager) error {
				if err := manager.AcquireLock(); err != nil {
					return err
				}
				defer manager.ReleaseLock()

				out := cmd.OutOrStdout()
				for {
					processed, err := manager.RunOnce(cmd.Context())
					if err != nil {
						if errors.Is(err, context.Canceled) {
							return err
						}
						return fmt.Errorf("pipeline run: %w", err)
					}
					fmt.Fprintf(out, "Processed %d stage execution(s)\n", processed)

					if interval <= 0 {
						return nil
					}
					select {
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					case <-time.After(interval):
					}
				}
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Keep running, rescanning after this delay (0 runs once)")
	return cmd
}

func newStageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <name> <session>",
		Short: "Run a single pipeline stage for one session",
		Long:  "Stage names: merge, link, align, ner, publish.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(cfg *config.Config, store *catalog.Store, manager *workflow.Manager) error {
				name, key := args[0], args[1]
				if err := manager.RunStage(cmd.Context(), key, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stage %s completed for session %s\n", name, key)
				return nil
			})
		},
	}
}
