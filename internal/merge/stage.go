package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/logging"
	"plenum/internal/services"
	"plenum/internal/session"
	"plenum/internal/stage"
)

// Stage merges a session's media and proceedings sources into one document.
type Stage struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewStage builds the merge stage.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, logger: logging.NewComponentLogger(logger, "merge")}
}

// ConfigFromSettings converts the file configuration into scoring parameters.
func ConfigFromSettings(cfg *config.Config) Config {
	return Config{
		Weights: Weights{
			Speaker: cfg.Merge.SpeakerWeight,
			Title:   cfg.Merge.TitleWeight,
		},
		Penalties: Penalties{
			Merge: cfg.Merge.MergePenalty,
			Split: cfg.Merge.SplitPenalty,
		},
	}
}

// Prepare verifies the media source exists; without it the session cannot
// be processed at all.
func (s *Stage) Prepare(ctx context.Context, record *catalog.Session) error {
	if record.MediaFile == "" {
		return services.Wrap(services.ErrMissingSource, StageMerge, "prepare",
			"Session has no media source file", nil)
	}
	if _, err := os.Stat(record.MediaFile); err != nil {
		return services.Wrap(services.ErrMissingSource, StageMerge, "prepare",
			fmt.Sprintf("Media source %q unreadable", record.MediaFile), err)
	}
	return nil
}

// Execute merges the sources and writes the merged stage file.
func (s *Stage) Execute(ctx context.Context, record *catalog.Session) error {
	media, err := session.Load(record.MediaFile)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return services.Wrap(services.ErrMissingSource, StageMerge, "load media", "", err)
		}
		return services.Wrap(services.ErrValidation, StageMerge, "load media", "", err)
	}

	var proceedings *session.Document
	if record.ProceedingsFile != "" {
		proceedings, err = session.Load(record.ProceedingsFile)
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			return services.Wrap(services.ErrValidation, StageMerge, "load proceedings", "", err)
		}
	}

	doc, err := Documents(proceedings, media, ConfigFromSettings(s.cfg), s.logger, time.Now())
	if err != nil {
		return err
	}

	outPath := catalog.StagePath(s.cfg, record.SessionKey, "merged")
	if err := session.Save(outPath, doc); err != nil {
		return services.Wrap(services.ErrValidation, StageMerge, "save document", "", err)
	}
	record.MergedFile = outPath

	report := Check(doc)
	record.SetProgress("Merged", fmt.Sprintf("%d items, %d media-only, %d unmatched proceedings",
		report.Items, report.MediaOnly, report.Unmatched))

	logging.WithContext(ctx, s.logger).Info("session merged",
		logging.Int("items", report.Items),
		logging.Int("media_only", report.MediaOnly),
		logging.Int("unmatched", report.Unmatched),
		logging.Int("speaker_conflicts", report.SpeakerConflicts))
	return nil
}

// HealthCheck verifies the source directories exist.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "merge"
	if _, err := os.Stat(catalog.MediaDir(s.cfg)); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("media source directory unavailable: %v", err))
	}
	return stage.Healthy(name)
}
