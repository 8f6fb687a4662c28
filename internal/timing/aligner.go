package timing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/fileutil"
	"plenum/internal/logging"
	"plenum/internal/services"
	"plenum/internal/services/aeneas"
	"plenum/internal/session"
	"plenum/internal/stage"
)

// StageAlign is the processing-map key the alignment stage stamps.
const StageAlign = "align"

// AlignStage force-aligns every speech item that carries an audio
// recording and propagates the resulting timecodes into comment segments.
type AlignStage struct {
	cfg    *config.Config
	engine *aeneas.Client
	client *http.Client
	logger *slog.Logger
}

// NewAlignStage builds the alignment stage.
func NewAlignStage(cfg *config.Config, logger *slog.Logger) *AlignStage {
	return &AlignStage{
		cfg:    cfg,
		engine: aeneas.New(cfg, logger),
		client: &http.Client{
			Timeout: time.Duration(cfg.Aligner.DownloadTimeoutSeconds) * time.Second,
		},
		logger: logging.NewComponentLogger(logger, "align"),
	}
}

// Prepare creates the audio cache directory and checks free space.
func (s *AlignStage) Prepare(ctx context.Context, record *catalog.Session) error {
	if err := fileutil.EnsureDir(catalog.AudioDir(s.cfg)); err != nil {
		return services.Wrap(services.ErrConfiguration, StageAlign, "prepare",
			"Cannot create audio cache directory", err)
	}
	return s.checkFreeSpace()
}

// Execute aligns the session document and writes the aligned stage file.
func (s *AlignStage) Execute(ctx context.Context, record *catalog.Session) error {
	input := record.LinkedFile
	if input == "" {
		input = record.MergedFile
	}
	doc, err := stage.LoadDocument(input, StageAlign)
	if err != nil {
		return err
	}

	logger := logging.WithContext(ctx, s.logger)
	aligned := 0
	failed := 0
	for _, item := range doc.Data {
		ok, err := s.alignItem(ctx, record.SessionKey, item, logger)
		if err != nil {
			// A failed download or engine run costs one item. Only an
			// exhausted cache or a cancelled run stops the session.
			if errors.Is(err, services.ErrResourceExhausted) || ctx.Err() != nil {
				return err
			}
			logger.Warn("item alignment failed, skipping",
				logging.Int("speech_index", item.SpeechIndex),
				logging.Error(err))
			failed++
			continue
		}
		if ok {
			aligned++
		}
	}

	doc.Meta.Stamp(StageAlign, time.Now())
	outPath := catalog.StagePath(s.cfg, record.SessionKey, "aligned")
	if err := session.Save(outPath, doc); err != nil {
		return services.Wrap(services.ErrValidation, StageAlign, "save document", "", err)
	}
	record.AlignedFile = outPath
	record.SetProgress("Aligned", fmt.Sprintf("%d of %d items aligned", aligned, len(doc.Data)))

	logger.Info("session aligned",
		logging.Int("items", len(doc.Data)),
		logging.Int("aligned", aligned),
		logging.Int("failed", failed))
	return nil
}

// HealthCheck verifies the engine binary and cache headroom.
func (s *AlignStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "align"
	if err := s.engine.Available(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	if err := s.checkFreeSpace(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

// alignItem aligns one speech item. Items without audio, without speech
// sentences, or with timecodes from an earlier run are skipped, not failed.
func (s *AlignStage) alignItem(ctx context.Context, key string, item *session.SpeechItem, logger *slog.Logger) (bool, error) {
	if item == nil || item.Media == nil || item.Media.AudioFileURI == "" {
		return false, nil
	}
	tasks := Tasks(item)
	if len(tasks) == 0 {
		return false, nil
	}
	if !s.cfg.Aligner.Force && alreadyTimed(item) {
		logger.Debug("item already timed, skipping",
			logging.Int("speech_index", item.SpeechIndex))
		return false, nil
	}

	if err := s.checkFreeSpace(); err != nil {
		return false, err
	}

	started := time.Now()

	audioPath, err := s.fetchAudio(ctx, key, item)
	if err != nil {
		return false, err
	}

	audioDir := catalog.AudioDir(s.cfg)
	taskPath := filepath.Join(audioDir, fmt.Sprintf("%s-%d-task.txt", key, item.SpeechIndex))
	outputPath := filepath.Join(audioDir, fmt.Sprintf("%s-%d-syncmap.json", key, item.SpeechIndex))
	defer os.Remove(taskPath)
	defer os.Remove(outputPath)

	if err := fileutil.WriteFileAtomic(taskPath, TaskFile(tasks), 0o644); err != nil {
		return false, services.Wrap(services.ErrValidation, StageAlign, "write task file", "", err)
	}

	if err := s.engine.Align(ctx, audioPath, taskPath, outputPath); err != nil {
		return false, err
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return false, services.Wrap(services.ErrExternalTool, StageAlign, "read sync map",
			"Alignment engine wrote no output", err)
	}
	fragments, err := aeneas.ParseSyncMap(raw)
	if err != nil {
		return false, err
	}

	applied := Apply(item, fragments)
	stamped := PropagateComments(item)
	item.Media.Aligned = true
	item.EnsureDebug().AlignSeconds = time.Since(started).Seconds()

	logger.Debug("item aligned",
		logging.Int("speech_index", item.SpeechIndex),
		logging.Int("sentences", applied),
		logging.Int("comments", stamped))
	return true, nil
}

// fetchAudio downloads the item's recording into the audio cache. Cached
// recordings are kept across runs and reused as-is.
func (s *AlignStage) fetchAudio(ctx context.Context, key string, item *session.SpeechItem) (string, error) {
	audioPath := filepath.Join(catalog.AudioDir(s.cfg),
		fmt.Sprintf("%s-%d%s", key, item.SpeechIndex, audioExt(item.Media.AudioFileURI)))
	if _, err := os.Stat(audioPath); err == nil {
		return audioPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.Media.AudioFileURI, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, StageAlign, "download audio",
			fmt.Sprintf("Invalid audio URI %q", item.Media.AudioFileURI), err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, StageAlign, "download audio", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, StageAlign, "download audio",
			fmt.Sprintf("Audio server returned status %d", resp.StatusCode), nil)
	}

	tmp := audioPath + ".partial"
	file, err := os.Create(tmp)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, StageAlign, "download audio", "", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return "", services.Wrap(services.ErrTransient, StageAlign, "download audio", "", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return "", services.Wrap(services.ErrTransient, StageAlign, "download audio", "", err)
	}
	if err := os.Rename(tmp, audioPath); err != nil {
		os.Remove(tmp)
		return "", services.Wrap(services.ErrConfiguration, StageAlign, "download audio", "", err)
	}
	return audioPath, nil
}

func (s *AlignStage) checkFreeSpace() error {
	free, err := fileutil.FreeSpace(s.cfg.Paths.CacheDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageAlign, "check free space", "", err)
	}
	if free < s.cfg.MinCacheBytes() {
		return services.Wrap(services.ErrResourceExhausted, StageAlign, "check free space",
			fmt.Sprintf("Cache directory has %d bytes free, need %d", free, s.cfg.MinCacheBytes()), nil)
	}
	return nil
}

// alreadyTimed reports whether every non-empty speech sentence of the item
// carries both timecodes already.
func alreadyTimed(item *session.SpeechItem) bool {
	timed := false
	for _, body := range item.Bodies() {
		if body.Type != session.BodySpeech {
			continue
		}
		for _, sentence := range body.Sentences {
			if strings.TrimSpace(sentence.Text) == "" {
				continue
			}
			if sentence.TimeStart == "" || sentence.TimeEnd == "" {
				return false
			}
			timed = true
		}
	}
	return timed
}

func audioExt(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ".mp3"
	}
	ext := path.Ext(parsed.Path)
	if ext == "" {
		return ".mp3"
	}
	return ext
}
