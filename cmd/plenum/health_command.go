package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/workflow"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check stage readiness and catalog health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(cfg *config.Config, store *catalog.Store, manager *workflow.Manager) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Stages", colorize) {
					fmt.Fprintln(out, line)
				}
				failures := 0
				for _, health := range manager.Health(cmd.Context()) {
					kind := statusOK
					message := "ready"
					if !health.Ready {
						kind = statusError
						message = health.Detail
						failures++
					}
					fmt.Fprintln(out, renderStatusLine(health.Name, kind, message, colorize))
				}

				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				for _, line := range renderSectionHeader("Catalog", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Total", statusInfo, strconv.Itoa(summary.Total), colorize))
				fmt.Fprintln(out, renderStatusLine("Pending", statusInfo, strconv.Itoa(summary.Pending), colorize))
				fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, strconv.Itoa(summary.Processing), colorize))
				fmt.Fprintln(out, renderStatusLine("Completed", statusOK, strconv.Itoa(summary.Completed), colorize))
				fmt.Fprintln(out, renderStatusLine("Failed", warnIfPositive(summary.Failed), strconv.Itoa(summary.Failed), colorize))

				if failures > 0 {
					return fmt.Errorf("%d stage(s) not ready", failures)
				}
				return nil
			})
		},
	}
}
