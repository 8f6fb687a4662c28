package entities

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/logging"
	"plenum/internal/services"
	"plenum/internal/session"
	"plenum/internal/stage"
)

// StageLink is the processing-map key the linking stage stamps.
const StageLink = "link"

// LinkStage resolves the people of a merged session against reference data.
type LinkStage struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewLinkStage builds the linking stage.
func NewLinkStage(cfg *config.Config, logger *slog.Logger) *LinkStage {
	return &LinkStage{cfg: cfg, logger: logging.NewComponentLogger(logger, "link")}
}

// Prepare verifies the reference data directory is usable.
func (s *LinkStage) Prepare(ctx context.Context, record *catalog.Session) error {
	info, err := os.Stat(s.cfg.Paths.EntityDataDir)
	if err != nil {
		if os.IsNotExist(err) {
			// Linking degrades to a no-op without reference data.
			return nil
		}
		return services.Wrap(services.ErrConfiguration, StageLink, "prepare", "", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, StageLink, "prepare",
			fmt.Sprintf("Entity data path %q is not a directory", s.cfg.Paths.EntityDataDir), nil)
	}
	return nil
}

// Execute links the merged document and writes the linked stage file.
func (s *LinkStage) Execute(ctx context.Context, record *catalog.Session) error {
	doc, err := stage.LoadDocument(record.MergedFile, StageLink)
	if err != nil {
		return err
	}

	linker, err := NewLinker(s.cfg.Paths.EntityDataDir, s.logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageLink, "load reference data", "", err)
	}

	linked := linker.LinkDocument(doc)
	doc.Meta.Stamp(StageLink, time.Now())

	outPath := catalog.StagePath(s.cfg, record.SessionKey, "linked")
	if err := session.Save(outPath, doc); err != nil {
		return services.Wrap(services.ErrValidation, StageLink, "save document", "", err)
	}
	record.LinkedFile = outPath
	record.SetProgress("Linked", fmt.Sprintf("%d person labels resolved", linked))

	logging.WithContext(ctx, s.logger).Info("session linked",
		logging.Int("items", len(doc.Data)),
		logging.Int("linked", linked))
	return nil
}

// HealthCheck reports whether reference data is present.
func (s *LinkStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "link"
	personsPath := filepath.Join(s.cfg.Paths.EntityDataDir, "persons.json")
	if _, err := os.Stat(personsPath); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("reference data missing: %s", personsPath))
	}
	return stage.Healthy(name)
}
