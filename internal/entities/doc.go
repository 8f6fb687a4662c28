// Package entities resolves the people and factions named in a session
// against reference data (entity linking) and extracts named entities from
// sentence text through an external disambiguation service.
package entities
