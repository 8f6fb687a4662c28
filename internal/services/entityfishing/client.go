// Package entityfishing is a thin client for the entity-fishing
// disambiguation service used for named-entity extraction.
package entityfishing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"plenum/internal/config"
	"plenum/internal/logging"
	"plenum/internal/services"
)

// Entity is one disambiguated mention returned by the service.
type Entity struct {
	RawName    string  `json:"rawName"`
	WikidataID string  `json:"wikidataId"`
	Type       string  `json:"type"`
	Confidence float64 `json:"nerd_selection_score"`
}

type disambiguateRequest struct {
	Text     string `json:"text"`
	Language struct {
		Lang string `json:"lang"`
	} `json:"language"`
}

type disambiguateResponse struct {
	Entities []Entity `json:"entities"`
}

// Client talks to an entity-fishing endpoint.
type Client struct {
	endpoint string
	language string
	http     *http.Client
	logger   *slog.Logger
}

// New builds a client from the NER configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		endpoint: cfg.NER.Endpoint,
		language: cfg.NER.Language,
		http: &http.Client{
			Timeout: time.Duration(cfg.NER.TimeoutSeconds) * time.Second,
		},
		logger: logging.NewComponentLogger(logger, "entityfishing"),
	}
}

// Disambiguate extracts linked entities from a piece of text. Empty text
// returns no entities without a service round trip.
func (c *Client) Disambiguate(ctx context.Context, text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	payload := disambiguateRequest{Text: text}
	payload.Language.Lang = c.language
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ner", "encode request", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/disambiguate", bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ner", "build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ner", "call service", "", err)
	}
	defer resp.Body.Close()

	// The service answers 404 for text it cannot say anything about.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "ner", "call service",
			fmt.Sprintf("Entity service returned status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ner", "read response", "", err)
	}
	var decoded disambiguateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ner", "decode response",
			"Entity service produced unreadable output", err)
	}
	return decoded.Entities, nil
}

// Ping checks that the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/kb/concept/Q1", nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "ner", "build request", "", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "ner", "ping service", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return services.Wrap(services.ErrTransient, "ner", "ping service",
			fmt.Sprintf("Entity service returned status %d", resp.StatusCode), nil)
	}
	return nil
}
