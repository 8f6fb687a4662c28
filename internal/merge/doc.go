// Package merge reconciles the two independently-produced records of a
// parliamentary session. A dynamic-programming global alignment matches the
// ordered proceedings and media item lists by speaker and title, matched
// items are folded together with provenance and a confidence score, and the
// orchestrator reconciles session-level date metadata between the sources.
package merge
