package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/merge"
	"plenum/internal/session"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show one session in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				record, err := store.GetByKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("session %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Session "+record.SessionKey, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Status", statusKindFor(record.Status), string(record.Status), colorize))
				fmt.Fprintln(out, renderStatusLine("Period", statusInfo, strconv.Itoa(record.Period), colorize))
				fmt.Fprintln(out, renderStatusLine("Number", statusInfo, strconv.Itoa(record.Number), colorize))
				if record.ProgressStage != "" {
					fmt.Fprintln(out, renderStatusLine("Progress", statusInfo,
						strings.TrimSpace(record.ProgressStage+" "+record.ProgressMessage), colorize))
				}
				if record.ErrorMessage != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, record.ErrorMessage, colorize))
				}

				printPath(out, colorize, "Media", record.MediaFile)
				printPath(out, colorize, "Proceedings", record.ProceedingsFile)
				printPath(out, colorize, "Merged", record.MergedFile)
				printPath(out, colorize, "Linked", record.LinkedFile)
				printPath(out, colorize, "Aligned", record.AlignedFile)
				printPath(out, colorize, "Extracted", record.ExtractedFile)
				printPath(out, colorize, "Final", record.FinalFile)

				if record.MergedFile != "" {
					if doc, err := session.Load(record.MergedFile); err == nil {
						printMergeReport(out, colorize, merge.Check(doc))
					}
				}
				return nil
			})
		},
	}
}

func printPath(out io.Writer, colorize bool, label, path string) {
	if path == "" {
		return
	}
	fmt.Fprintln(out, renderStatusLine(label, statusInfo, path, colorize))
}

func printMergeReport(out io.Writer, colorize bool, report merge.Report) {
	for _, line := range renderSectionHeader("Merge quality", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Items", statusInfo, strconv.Itoa(report.Items), colorize))
	fmt.Fprintln(out, renderStatusLine("Media only", warnIfPositive(report.MediaOnly), strconv.Itoa(report.MediaOnly), colorize))
	fmt.Fprintln(out, renderStatusLine("Unmatched", warnIfPositive(report.Unmatched), strconv.Itoa(report.Unmatched), colorize))
	fmt.Fprintln(out, renderStatusLine("Speaker conflicts", warnIfPositive(report.SpeakerConflicts), strconv.Itoa(report.SpeakerConflicts), colorize))
	fmt.Fprintln(out, renderStatusLine("President only", warnIfPositive(report.PresidentOnly), strconv.Itoa(report.PresidentOnly), colorize))
}

func warnIfPositive(count int) statusKind {
	if count > 0 {
		return statusWarn
	}
	return statusOK
}

func statusKindFor(status catalog.Status) statusKind {
	switch {
	case status == catalog.StatusCompleted:
		return statusOK
	case status == catalog.StatusFailed:
		return statusError
	case status.IsProcessing():
		return statusWarn
	default:
		return statusInfo
	}
}
