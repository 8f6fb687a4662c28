// Package aeneas invokes the aeneas forced-alignment engine and parses its
// sync-map output.
package aeneas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"plenum/internal/config"
	"plenum/internal/logging"
	"plenum/internal/services"
)

// Fragment is one aligned text fragment from the engine's sync map.
// Begin and End are second offsets formatted by the engine ("123.440").
type Fragment struct {
	ID    string `json:"id"`
	Begin string `json:"begin"`
	End   string `json:"end"`
}

type syncMap struct {
	Fragments []Fragment `json:"fragments"`
}

// Client runs the alignment engine as an external process.
type Client struct {
	command  []string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// New builds a client from the aligner configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		command:  strings.Fields(cfg.Aligner.Binary),
		language: cfg.Aligner.Language,
		timeout:  time.Duration(cfg.Aligner.TimeoutSeconds) * time.Second,
		logger:   logging.NewComponentLogger(logger, "aeneas"),
	}
}

// Available reports whether the engine executable can be found.
func (c *Client) Available() error {
	if len(c.command) == 0 {
		return services.Wrap(services.ErrConfiguration, "align", "resolve engine",
			"Alignment engine command is empty", nil)
	}
	if _, err := exec.LookPath(c.command[0]); err != nil {
		return services.Wrap(services.ErrConfiguration, "align", "resolve engine",
			fmt.Sprintf("Alignment engine %q not found in PATH", c.command[0]), err)
	}
	return nil
}

// Align runs one engine task: audioPath against the task file at taskPath,
// writing the JSON sync map to outputPath.
func (c *Client) Align(ctx context.Context, audioPath, taskPath, outputPath string) error {
	if len(c.command) == 0 {
		return services.Wrap(services.ErrConfiguration, "align", "run engine",
			"Alignment engine command is empty", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	taskConfig := fmt.Sprintf("task_language=%s|is_text_type=parsed|os_task_file_format=json", c.language)
	args := append(append([]string{}, c.command[1:]...), audioPath, taskPath, taskConfig, outputPath)

	started := time.Now()
	cmd := exec.CommandContext(runCtx, c.command[0], args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if len(detail) > 500 {
			detail = detail[len(detail)-500:]
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTransient, "align", "run engine",
				"Alignment engine timed out", runCtx.Err())
		}
		return services.Wrap(services.ErrExternalTool, "align", "run engine",
			fmt.Sprintf("Alignment engine failed: %s", detail), err)
	}

	c.logger.Debug("engine run finished",
		logging.String("audio", audioPath),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

// ParseSyncMap decodes engine output and returns the regular fragments
// keyed by identifier. The engine emits synthetic head and tail fragments
// with empty identifiers; those are dropped.
func ParseSyncMap(data []byte) (map[string]Fragment, error) {
	var parsed syncMap
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "align", "parse sync map",
			"Alignment engine produced unreadable output", err)
	}
	fragments := make(map[string]Fragment, len(parsed.Fragments))
	for _, fragment := range parsed.Fragments {
		if strings.TrimSpace(fragment.ID) == "" {
			continue
		}
		fragments[fragment.ID] = fragment
	}
	return fragments, nil
}
