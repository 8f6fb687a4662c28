package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/fileutil"
	"plenum/internal/logging"
	"plenum/internal/services"
	"plenum/internal/session"
	"plenum/internal/stage"
)

// StagePublish is the processing-map key the publish stage stamps.
const StagePublish = "publish"

// PublishStage moves the fully processed document into the processed data
// directory. A re-run whose data payload is unchanged leaves the published
// file untouched so downstream consumers see stable modification times.
type PublishStage struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPublishStage builds the publish stage.
func NewPublishStage(cfg *config.Config, logger *slog.Logger) *PublishStage {
	return &PublishStage{cfg: cfg, logger: logging.NewComponentLogger(logger, "publish")}
}

// Prepare creates the processed data directory.
func (s *PublishStage) Prepare(ctx context.Context, record *catalog.Session) error {
	if err := fileutil.EnsureDir(catalog.ProcessedDir(s.cfg)); err != nil {
		return services.Wrap(services.ErrConfiguration, StagePublish, "prepare",
			"Cannot create processed data directory", err)
	}
	return nil
}

// Execute publishes the session record.
func (s *PublishStage) Execute(ctx context.Context, record *catalog.Session) error {
	input := record.ExtractedFile
	if input == "" {
		input = record.AlignedFile
	}
	doc, err := stage.LoadDocument(input, StagePublish)
	if err != nil {
		return err
	}

	logger := logging.WithContext(ctx, s.logger)
	finalPath := catalog.FinalPath(s.cfg, record.SessionKey)
	signature := session.Signature(doc.Data)

	existing, err := session.Load(finalPath)
	if err == nil && session.Signature(existing.Data) == signature {
		record.FinalFile = finalPath
		record.SetProgress("Published", "content unchanged, publication skipped")
		logger.Info("published record unchanged", logging.String("path", finalPath))
		return nil
	}
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		logger.Warn("existing published record unreadable, overwriting", logging.Error(err))
	}

	doc.Meta.Stamp(StagePublish, time.Now())
	if err := session.Save(finalPath, doc); err != nil {
		return services.Wrap(services.ErrValidation, StagePublish, "save document", "", err)
	}
	record.FinalFile = finalPath
	record.SetProgress("Published", fmt.Sprintf("%d items published", len(doc.Data)))

	logger.Info("session published",
		logging.String("path", finalPath),
		logging.Int("items", len(doc.Data)))
	return nil
}

// HealthCheck verifies the data directory is available.
func (s *PublishStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "publish"
	if err := fileutil.EnsureDir(catalog.ProcessedDir(s.cfg)); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
