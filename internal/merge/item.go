package merge

import (
	"errors"
	"log/slog"

	"plenum/internal/logging"
	"plenum/internal/session"
	"plenum/internal/textutil"
)

// ErrMainSpeakerInvariant reports a merged item whose first person is not
// tagged main-speaker. The item is dropped from the output; the session's
// other items are unaffected.
var ErrMainSpeakerInvariant = errors.New("first person is not main-speaker")

// Merger combines one media item with its matched proceeding items.
type Merger struct {
	logger *slog.Logger
}

// NewMerger constructs a merger with a component-scoped logger.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{logger: logging.NewComponentLogger(logger, "merge")}
}

// MergeItem folds one-or-more matched proceeding items into a copy of the
// media item. Media is authoritative for timing and the session metadata
// baseline; proceedings are authoritative for text.
func (m *Merger) MergeItem(media *session.SpeechItem, proceedings []*session.SpeechItem) (*session.SpeechItem, error) {
	output := media.Clone()
	first := proceedings[0]

	output.OriginTextID = first.OriginTextID
	if first.Session != nil {
		if output.Session == nil {
			output.Session = &session.SessionBlock{}
		}
		output.Session.DateStart = first.Session.DateStart
		output.Session.DateEnd = first.Session.DateEnd
	}

	debug := output.EnsureDebug()
	debug.ProceedingIndex = first.SpeechIndex
	debug.ProceedingIndexes = make([]int, len(proceedings))
	for i, p := range proceedings {
		debug.ProceedingIndexes[i] = p.SpeechIndex
	}
	debug.MediaIndex = media.SpeechIndex

	output.People = mergePeople(media, proceedings)

	// Media's attribution of the primary speaker takes precedence: its
	// context always wins, its role wins when set.
	if len(media.People) > 0 {
		mediaPerson := media.People[0]
		if person := findPerson(output.People, mediaPerson.Label); person != nil {
			if mediaPerson.Role != "" {
				person.Role = mediaPerson.Role
			}
			person.Context = mediaPerson.Context
		}
	}

	confidence := 1.0
	if len(output.People) > 0 {
		firstPerson := output.People[0]
		if firstPerson.Context != session.ContextMainSpeaker {
			m.logger.Error("dropping merged item: first person must be main-speaker",
				logging.String("label", firstPerson.Label),
				logging.Int("media_index", media.SpeechIndex),
			)
			return nil, ErrMainSpeakerInvariant
		}
		if len(output.People) > 1 {
			// A second main-speaker means the sources disagree about
			// who spoke; flag it once and halve the confidence.
			second := output.People[1]
			if second.Context == session.ContextMainSpeaker {
				second.Context = session.ContextMainProceedingSpeaker
				confidence *= 0.5
			}
			for _, person := range output.People[2:] {
				if person.Context == session.ContextMainSpeaker {
					person.Context = session.ContextSpeaker
				}
			}
		}
	}

	output.TextContents = nil
	output.Documents = nil
	for _, p := range proceedings {
		output.TextContents = append(output.TextContents, p.TextContents...)
		output.Documents = append(output.Documents, p.Documents...)
	}

	debug.Confidence = confidence
	return output, nil
}

// mergePeople de-duplicates people by accent-stripped label across the
// media item and every matched proceeding. Later entries overwrite earlier
// ones in place, so the order of first appearance is preserved while later
// proceedings can correct earlier-seen records. Persons are copied; merging
// must not mutate source items.
func mergePeople(media *session.SpeechItem, proceedings []*session.SpeechItem) []*session.Person {
	var order []string
	byKey := make(map[string]*session.Person)
	add := func(person *session.Person) {
		key := textutil.StripAccents(person.Label)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = person.Clone()
	}
	for _, p := range proceedings {
		for _, person := range media.People {
			add(person)
		}
		for _, person := range p.People {
			add(person)
		}
	}
	people := make([]*session.Person, 0, len(order))
	for _, key := range order {
		people = append(people, byKey[key])
	}
	return people
}

func findPerson(people []*session.Person, label string) *session.Person {
	key := textutil.StripAccents(label)
	for _, person := range people {
		if textutil.StripAccents(person.Label) == key {
			return person
		}
	}
	return nil
}
