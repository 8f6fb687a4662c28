package stage

import (
	"errors"

	"plenum/internal/services"
	"plenum/internal/session"
)

// LoadDocument reads a session document written by an earlier stage.
// Missing files map to services.ErrMissingSource and unreadable content to
// services.ErrValidation, both suitable for stage Execute methods.
func LoadDocument(path, stageName string) (*session.Document, error) {
	doc, err := session.Load(path)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, services.Wrap(
				services.ErrMissingSource, stageName, "load document",
				"Input document missing; rerun the preceding stage", err)
		}
		return nil, services.Wrap(
			services.ErrValidation, stageName, "load document",
			"Input document unreadable", err)
	}
	return doc, nil
}
