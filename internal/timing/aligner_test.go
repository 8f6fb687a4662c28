package timing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/logging"
	"plenum/internal/session"
	"plenum/internal/testsupport"
)

func alignTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Aligner.MinCacheGiB = 0
	// A nonexistent engine makes every invocation fail deterministically.
	cfg.Aligner.Binary = "no-such-align-engine"
	return cfg
}

func alignTestDoc(audioURI string, timed bool) *session.Document {
	sentence := &session.Sentence{Text: "Die Sitzung ist eröffnet."}
	if timed {
		sentence.TimeStart = "0.000"
		sentence.TimeEnd = "2.500"
	}
	return &session.Document{
		Meta: session.Meta{Session: "20021"},
		Data: []*session.SpeechItem{{
			SpeechIndex: 1,
			Media:       &session.MediaBlock{AudioFileURI: audioURI},
			TextContents: []*session.TextContent{{TextBody: []*session.TextBody{{
				Type:      session.BodySpeech,
				Sentences: []*session.Sentence{sentence},
			}}}},
		}},
	}
}

func runAlign(t *testing.T, cfg *config.Config, doc *session.Document) *catalog.Session {
	t.Helper()
	mergedPath := catalog.StagePath(cfg, "20021", "merged")
	if err := session.Save(mergedPath, doc); err != nil {
		t.Fatalf("save merged doc: %v", err)
	}
	stage := NewAlignStage(cfg, logging.NewNop())
	record := &catalog.Session{SessionKey: "20021", MergedFile: mergedPath}
	if err := stage.Prepare(context.Background(), record); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stage.Execute(context.Background(), record); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return record
}

func TestAlignStageSkipsItemsWhoseDownloadFails(t *testing.T) {
	cfg := alignTestConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	record := runAlign(t, cfg, alignTestDoc(server.URL+"/rec.mp3", false))

	if record.AlignedFile == "" {
		t.Fatal("aligned file not written")
	}
	out, err := session.Load(record.AlignedFile)
	if err != nil {
		t.Fatalf("load aligned doc: %v", err)
	}
	item := out.Data[0]
	if item.Media.Aligned {
		t.Fatal("item must not be marked aligned")
	}
	sentence := item.TextContents[0].TextBody[0].Sentences[0]
	if sentence.TimeStart != "" || sentence.TimeEnd != "" {
		t.Fatalf("sentence timed despite failed download: %+v", sentence)
	}
}

func TestAlignStageKeepsDownloadedAudioAcrossRuns(t *testing.T) {
	cfg := alignTestConfig(t)
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	doc := alignTestDoc(server.URL+"/20021.mp3", false)
	runAlign(t, cfg, doc)

	audioPath := filepath.Join(catalog.AudioDir(cfg), "20021-1.mp3")
	data, err := os.ReadFile(audioPath)
	if err != nil {
		t.Fatalf("cached audio missing: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("cached audio = %q", data)
	}

	// A second run reuses the cached recording without a new download.
	runAlign(t, cfg, doc)
	if requests != 1 {
		t.Fatalf("downloads = %d, want 1", requests)
	}
}

func TestAlignStageSkipsAlreadyTimedItems(t *testing.T) {
	cfg := alignTestConfig(t)
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	doc := alignTestDoc(server.URL+"/20021.mp3", true)
	runAlign(t, cfg, doc)
	if requests != 0 {
		t.Fatalf("downloads = %d, want 0 for a timed item", requests)
	}

	cfg.Aligner.Force = true
	runAlign(t, cfg, doc)
	if requests != 1 {
		t.Fatalf("downloads = %d, want 1 when forced", requests)
	}
}
