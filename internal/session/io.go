package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"plenum/internal/fileutil"
)

// ErrNotFound reports a missing document file. Callers decide whether a
// missing source degrades or fails the session.
var ErrNotFound = errors.New("session document not found")

// Load reads a document from path. A missing file returns ErrNotFound.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	return &doc, nil
}

// Save serializes the document and writes it atomically so a stage's output
// only ever appears complete.
func Save(path string, doc *Document) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	payload = append(payload, '\n')
	if err := fileutil.WriteFileAtomic(path, payload, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

// Signature hashes the data payload, ignoring meta, so re-runs that change
// only processing timestamps do not trigger a re-publish.
func Signature(data []*SpeechItem) string {
	payload, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
