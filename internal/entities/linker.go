package entities

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"plenum/internal/logging"
	"plenum/internal/session"
	"plenum/internal/textutil"
)

// Entity type tags used on linked records.
const (
	TypePerson  = "PERSON"
	TypeFaction = "ORG"
)

// referenceRecord is one entry of the persons or factions reference file.
type referenceRecord struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	AltLabels []string `json:"altLabels,omitempty"`
}

// Linker resolves speaker and faction labels to stable knowledge-base
// identifiers. Lookup keys are cleaned labels, so spelling variants in
// accents, case, and punctuation still match.
type Linker struct {
	persons  map[string]string
	factions map[string]string
	logger   *slog.Logger
}

// NewLinker loads persons.json and factions.json from dataDir. A missing
// reference file leaves the corresponding lookup empty; linking then
// simply resolves nothing for that kind.
func NewLinker(dataDir string, logger *slog.Logger) (*Linker, error) {
	linker := &Linker{
		persons:  map[string]string{},
		factions: map[string]string{},
		logger:   logging.NewComponentLogger(logger, "link"),
	}

	for _, load := range []struct {
		file   string
		target map[string]string
	}{
		{"persons.json", linker.persons},
		{"factions.json", linker.factions},
	} {
		path := filepath.Join(dataDir, load.file)
		records, err := loadReference(path)
		if err != nil {
			if os.IsNotExist(err) {
				linker.logger.Warn("reference data missing", logging.String("path", path))
				continue
			}
			return nil, err
		}
		for _, record := range records {
			if record.ID == "" {
				continue
			}
			for _, label := range append([]string{record.Label}, record.AltLabels...) {
				key := textutil.CleanupLabel(label)
				if key == "" {
					continue
				}
				if _, exists := load.target[key]; !exists {
					load.target[key] = record.ID
				}
			}
		}
	}
	return linker, nil
}

func loadReference(path string) ([]referenceRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []referenceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode reference data %s: %w", path, err)
	}
	return records, nil
}

// PersonCount returns the number of distinct person lookup keys.
func (l *Linker) PersonCount() int { return len(l.persons) }

// FactionCount returns the number of distinct faction lookup keys.
func (l *Linker) FactionCount() int { return len(l.factions) }

// LinkPeople resolves every person of the item in place and returns how
// many person labels matched the reference data. A faction label always
// receives a faction reference; its identifier stays empty when the
// faction is unknown so downstream consumers can tell "unlinked" from
// "absent".
func (l *Linker) LinkPeople(item *session.SpeechItem) int {
	if item == nil {
		return 0
	}
	linked := 0
	for _, person := range item.People {
		if person == nil {
			continue
		}
		if id, ok := l.persons[textutil.CleanupLabel(person.Label)]; ok {
			person.WID = id
			person.WType = TypePerson
			linked++
		}
		if person.Faction != "" && person.FactionRef == nil {
			ref := &session.EntityRef{Label: person.Faction, WType: TypeFaction}
			if id, ok := l.factions[textutil.CleanupLabel(person.Faction)]; ok {
				ref.WID = id
			}
			person.FactionRef = ref
		}
	}
	return linked
}

// LinkDocument resolves every item of the document and returns the total
// number of matched person labels.
func (l *Linker) LinkDocument(doc *session.Document) int {
	if doc == nil {
		return 0
	}
	linked := 0
	for _, item := range doc.Data {
		linked += l.LinkPeople(item)
	}
	return linked
}
