package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/entities"
	"plenum/internal/logging"
	"plenum/internal/merge"
	"plenum/internal/services"
	"plenum/internal/stage"
	"plenum/internal/timing"
)

// pipelineStage binds a stage handler to its catalog status transitions.
type pipelineStage struct {
	name       string
	ready      catalog.Status
	processing catalog.Status
	done       catalog.Status
	handler    stage.Handler
}

// Manager coordinates session processing through the ordered stages.
type Manager struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
	stages []pipelineStage
	lock   *flock.Flock
}

// NewManager constructs a workflow manager with the standard pipeline.
func NewManager(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow"),
		stages: []pipelineStage{
			{
				name:       merge.StageMerge,
				ready:      catalog.StatusPending,
				processing: catalog.StatusMerging,
				done:       catalog.StatusMerged,
				handler:    merge.NewStage(cfg, logger),
			},
			{
				name:       entities.StageLink,
				ready:      catalog.StatusMerged,
				processing: catalog.StatusLinking,
				done:       catalog.StatusLinked,
				handler:    entities.NewLinkStage(cfg, logger),
			},
			{
				name:       timing.StageAlign,
				ready:      catalog.StatusLinked,
				processing: catalog.StatusAligning,
				done:       catalog.StatusAligned,
				handler:    timing.NewAlignStage(cfg, logger),
			},
			{
				name:       entities.StageNER,
				ready:      catalog.StatusAligned,
				processing: catalog.StatusExtracting,
				done:       catalog.StatusExtracted,
				handler:    entities.NewExtractStage(cfg, logger),
			},
			{
				name:       StagePublish,
				ready:      catalog.StatusExtracted,
				processing: catalog.StatusPublishing,
				done:       catalog.StatusCompleted,
				handler:    NewPublishStage(cfg, logger),
			},
		},
		lock: flock.New(filepath.Join(cfg.Paths.CacheDir, "plenum.lock")),
	}
}

// AcquireLock takes the single-instance lock. Two pipelines sharing a
// cache directory would corrupt each other's stage files.
func (m *Manager) AcquireLock() error {
	locked, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another pipeline instance holds %s", m.lock.Path())
	}
	return nil
}

// ReleaseLock releases the single-instance lock.
func (m *Manager) ReleaseLock() error {
	return m.lock.Unlock()
}

// RunOnce discovers sessions and processes every runnable stage until no
// more work is eligible. Per-session failures are recorded and do not stop
// the run; the number of stage executions is returned.
func (m *Manager) RunOnce(ctx context.Context) (int, error) {
	added, requeued, err := m.store.Sync(ctx, m.cfg)
	if err != nil {
		return 0, fmt.Errorf("sync sessions: %w", err)
	}
	if added > 0 || requeued > 0 {
		m.logger.Info("catalog synced",
			logging.Int64("added", added),
			logging.Int64("requeued", requeued))
	}

	if _, err := m.store.ResetStuckProcessing(ctx); err != nil {
		return 0, err
	}

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		record, current, ok, err := m.nextWork(ctx)
		if err != nil {
			return processed, err
		}
		if !ok {
			return processed, nil
		}

		if err := m.runStage(ctx, current, record); err != nil && errors.Is(err, context.Canceled) {
			return processed, err
		}
		processed++
	}
}

func (m *Manager) nextWork(ctx context.Context) (*catalog.Session, pipelineStage, bool, error) {
	for _, current := range m.stages {
		record, err := m.store.NextForStatuses(ctx, current.ready)
		if err != nil {
			return nil, pipelineStage{}, false, err
		}
		if record != nil {
			return record, current, true, nil
		}
	}
	return nil, pipelineStage{}, false, nil
}

// RunStage runs one named stage for one session, regardless of where the
// session currently sits in the pipeline.
func (m *Manager) RunStage(ctx context.Context, key, name string) error {
	if _, _, err := m.store.Sync(ctx, m.cfg); err != nil {
		return fmt.Errorf("sync sessions: %w", err)
	}
	record, err := m.store.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("unknown session %q", key)
	}
	for _, current := range m.stages {
		if current.name == name {
			return m.runStage(ctx, current, record)
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}

// StageNames returns the pipeline stage names in execution order.
func (m *Manager) StageNames() []string {
	names := make([]string, len(m.stages))
	for i, current := range m.stages {
		names[i] = current.name
	}
	return names
}

// Health runs every stage's readiness check.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, current := range m.stages {
		checks = append(checks, current.handler.HealthCheck(ctx))
	}
	return checks
}

func (m *Manager) runStage(ctx context.Context, current pipelineStage, record *catalog.Session) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(
		services.WithStage(
			services.WithSession(ctx, record.SessionKey),
			current.name),
		requestID)
	logger := logging.WithContext(stageCtx, m.logger)

	record.Status = current.processing
	record.ErrorMessage = ""
	record.SetProgress(current.name, "started")
	if err := m.store.Update(stageCtx, record); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	started := time.Now()
	logger.Info("stage started")

	if err := current.handler.Prepare(stageCtx, record); err != nil {
		return m.failStage(stageCtx, logger, current, record, err)
	}
	if err := current.handler.Execute(stageCtx, record); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return err
		}
		return m.failStage(stageCtx, logger, current, record, err)
	}

	record.Status = current.done
	if err := m.store.Update(stageCtx, record); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info("stage completed",
		logging.String("next_status", string(record.Status)),
		logging.Duration("stage_duration", time.Since(started)))
	return nil
}

func (m *Manager) failStage(ctx context.Context, logger *slog.Logger, current pipelineStage, record *catalog.Session, cause error) error {
	logger.Error("stage failed",
		logging.String("marker", services.MarkerOf(cause)),
		logging.Error(cause))
	record.SetFailed(cause.Error())
	if err := m.store.Update(ctx, record); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	return cause
}
