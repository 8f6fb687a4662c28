package merge

import (
	"strings"

	"plenum/internal/session"
	"plenum/internal/textutil"
)

// NoSpeaker is the placeholder speaker key for items naming no people.
const NoSpeaker = "NO_SPEAKER"

// Weights score how strongly each matching signal counts. Title is the
// weaker signal because it is more often mismatched across sources.
type Weights struct {
	Speaker float64
	Title   float64
}

// Penalties are the negative costs of skipping an item on either side
// during alignment.
type Penalties struct {
	// Merge is applied when an additional proceeding folds into the same
	// media item.
	Merge float64
	// Split is applied when an additional media item consumes the same
	// proceeding.
	Split float64
}

// Config bundles the scoring parameters of the aligner.
type Config struct {
	Weights   Weights
	Penalties Penalties
}

// DefaultConfig returns the tuned production parameters.
func DefaultConfig() Config {
	return Config{
		Weights:   Weights{Speaker: 4, Title: 2},
		Penalties: Penalties{Merge: -1, Split: -1},
	}
}

// ItemKey is the derived comparison key of one speech item.
type ItemKey struct {
	SpeechIndex int
	Speaker     string
	Title       string
	Item        *session.SpeechItem
}

// KeyFor derives the comparison key: the first listed person's normalized
// label (the sources sort the main speaker first) and the agenda item's
// official title.
func KeyFor(item *session.SpeechItem) ItemKey {
	speaker := NoSpeaker
	if len(item.People) > 0 {
		speaker = textutil.SpeakerKey(item.People[0].Label)
	}
	return ItemKey{
		SpeechIndex: item.SpeechIndex,
		Speaker:     speaker,
		Title:       item.OfficialTitle(),
		Item:        item,
	}
}

// Similarity scores how alike two items are. Comparison is equality-based:
// edit distance was evaluated and rejected because source differences are
// often a single trailing token that it under-penalizes.
func (c Config) Similarity(a, b ItemKey) float64 {
	var score float64
	if stringsMatch(a.Speaker, b.Speaker) {
		score += c.Weights.Speaker
	}
	if stringsMatch(a.Title, b.Title) {
		score += c.Weights.Title
	}
	return score
}

func stringsMatch(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func buildIndex(items []*session.SpeechItem) []ItemKey {
	keys := make([]ItemKey, len(items))
	for i, item := range items {
		keys[i] = KeyFor(item)
	}
	return keys
}
