package entityfishing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"plenum/internal/config"
	"plenum/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.NER.Endpoint = server.URL
	cfg.NER.Language = "de"
	cfg.NER.TimeoutSeconds = 5
	return New(&cfg, logging.NewNop())
}

func TestDisambiguateParsesEntities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/disambiguate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["text"] != "Angela Merkel sprach." {
			t.Errorf("text = %v", req["text"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entities":[
            {"rawName":"Angela Merkel","wikidataId":"Q567","type":"PERSON","nerd_selection_score":0.92}
        ]}`))
	})

	entities, err := client.Disambiguate(context.Background(), "Angela Merkel sprach.")
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(entities))
	}
	got := entities[0]
	if got.RawName != "Angela Merkel" || got.WikidataID != "Q567" || got.Confidence != 0.92 {
		t.Fatalf("entity = %+v", got)
	}
}

func TestDisambiguateEmptyTextSkipsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for empty text")
	})
	entities, err := client.Disambiguate(context.Background(), "")
	if err != nil || entities != nil {
		t.Fatalf("got %v, %v", entities, err)
	}
}

func TestDisambiguateTreatsNotFoundAsNoEntities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	entities, err := client.Disambiguate(context.Background(), "Hm.")
	if err != nil {
		t.Fatalf("Disambiguate: %v", err)
	}
	if entities != nil {
		t.Fatalf("entities = %v, want none", entities)
	}
}

func TestDisambiguateServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	if _, err := client.Disambiguate(context.Background(), "Text."); err == nil {
		t.Fatal("expected error for server failure")
	}
}
