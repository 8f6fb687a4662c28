package entities

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/logging"
	"plenum/internal/services"
	"plenum/internal/services/entityfishing"
	"plenum/internal/session"
	"plenum/internal/stage"
)

// StageNER is the processing-map key the extraction stage stamps.
const StageNER = "ner"

// extractor abstracts the disambiguation service for tests.
type extractor interface {
	Disambiguate(ctx context.Context, text string) ([]entityfishing.Entity, error)
	Ping(ctx context.Context) error
}

// ExtractStage runs named-entity extraction over every aligned sentence.
// When extraction is disabled by configuration the stage passes the
// document through unchanged so the session still reaches publication.
type ExtractStage struct {
	cfg    *config.Config
	client extractor
	logger *slog.Logger
}

// NewExtractStage builds the extraction stage.
func NewExtractStage(cfg *config.Config, logger *slog.Logger) *ExtractStage {
	return &ExtractStage{
		cfg:    cfg,
		client: entityfishing.New(cfg, logger),
		logger: logging.NewComponentLogger(logger, "ner"),
	}
}

// Prepare pings the service when extraction is enabled.
func (s *ExtractStage) Prepare(ctx context.Context, record *catalog.Session) error {
	if !s.cfg.NER.Enabled {
		return nil
	}
	return s.client.Ping(ctx)
}

// Execute extracts entities and writes the extraction stage file.
func (s *ExtractStage) Execute(ctx context.Context, record *catalog.Session) error {
	doc, err := stage.LoadDocument(record.AlignedFile, StageNER)
	if err != nil {
		return err
	}

	logger := logging.WithContext(ctx, s.logger)
	extracted := 0
	failed := 0
	if s.cfg.NER.Enabled {
		for _, item := range doc.Data {
			count, errs, err := s.extractItem(ctx, item, logger)
			if err != nil {
				return err
			}
			extracted += count
			failed += errs
		}
	} else {
		logger.Info("entity extraction disabled, passing document through")
	}

	doc.Meta.Stamp(StageNER, time.Now())
	outPath := catalog.StagePath(s.cfg, record.SessionKey, "ner")
	if err := session.Save(outPath, doc); err != nil {
		return services.Wrap(services.ErrValidation, StageNER, "save document", "", err)
	}
	record.ExtractedFile = outPath
	record.SetProgress("Extracted", fmt.Sprintf("%d entities extracted", extracted))

	logger.Info("entities extracted",
		logging.Int("items", len(doc.Data)),
		logging.Int("entities", extracted),
		logging.Int("failed_sentences", failed))
	return nil
}

// HealthCheck pings the service when extraction is enabled.
func (s *ExtractStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "ner"
	if !s.cfg.NER.Enabled {
		return stage.Healthy(name)
	}
	if err := s.client.Ping(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

// extractItem annotates the item's speech sentences. A sentence whose
// service call fails is logged and left without entities; only a cancelled
// context stops the run.
func (s *ExtractStage) extractItem(ctx context.Context, item *session.SpeechItem, logger *slog.Logger) (int, int, error) {
	if item == nil {
		return 0, 0, nil
	}
	started := time.Now()
	extracted := 0
	failed := 0
	for _, body := range item.Bodies() {
		if body.Type != session.BodySpeech {
			continue
		}
		for _, sentence := range body.Sentences {
			found, err := s.client.Disambiguate(ctx, sentence.Text)
			if err != nil {
				if ctx.Err() != nil {
					return extracted, failed, err
				}
				logger.Warn("entity extraction failed for sentence",
					logging.Int("speech_index", item.SpeechIndex),
					logging.Error(err))
				failed++
				continue
			}
			if len(found) == 0 {
				continue
			}
			entities := make([]session.Entity, 0, len(found))
			for _, entity := range found {
				if entity.WikidataID == "" {
					continue
				}
				entities = append(entities, session.Entity{
					Label: entity.RawName,
					WID:   entity.WikidataID,
					WType: entity.Type,
					Score: entity.Confidence,
				})
			}
			if len(entities) == 0 {
				continue
			}
			sentence.Entities = entities
			extracted += len(entities)
		}
	}
	item.EnsureDebug().NERSeconds = time.Since(started).Seconds()
	return extracted, failed, nil
}
