package merge

import "plenum/internal/session"

// Step is one correspondence produced by the aligner: media item i best
// matches proceeding item j. Steps are intermediate records consumed
// immediately by the orchestrator, never persisted. Score is the total
// score of the chosen path.
type Step struct {
	MediaIndex      int
	ProceedingIndex int
	Score           float64
	Media           *session.SpeechItem
	Proceeding      *session.SpeechItem
}

// Align runs a Needleman-Wunsch style global alignment over the two ordered
// item lists and returns the correspondence path in ascending media order.
// Multiple proceedings may map to one media item (fan-in, grouped later by
// the orchestrator) and one proceeding may serve several media items
// (fan-out). Either list being empty yields no steps.
//
// The whole matrix is seeded with raw similarity instead of the textbook
// zero/penalty chain: session openings are high-confidence anchors, so the
// first items are assumed roughly aligned.
func Align(proceedings, media []*session.SpeechItem, cfg Config) []Step {
	mIdx := buildIndex(media)
	pIdx := buildIndex(proceedings)
	if len(mIdx) == 0 || len(pIdx) == 0 {
		return nil
	}

	scores := make([][]float64, len(mIdx))
	for i := range mIdx {
		scores[i] = make([]float64, len(pIdx))
		for j := range pIdx {
			scores[i][j] = cfg.Similarity(mIdx[i], pIdx[j])
		}
	}

	// Row 0 and column 0 keep their seed values; they have no ancestors.
	for i := 1; i < len(mIdx); i++ {
		for j := 1; j < len(pIdx); j++ {
			best := scores[i-1][j-1] + cfg.Similarity(mIdx[i], pIdx[j])
			if v := scores[i-1][j] + cfg.Penalties.Split; v > best {
				best = v
			}
			if v := scores[i][j-1] + cfg.Penalties.Merge; v > best {
				best = v
			}
			scores[i][j] = best
		}
	}

	// Backtrack a maximal path. Ties prefer the diagonal (direct
	// correspondence), then consuming a media item over a proceeding.
	var path []Step
	i := len(mIdx) - 1
	j := len(pIdx) - 1
	maxScore := scores[i][j]
	for i > 0 && j > 0 {
		path = append(path, Step{
			MediaIndex:      i,
			ProceedingIndex: j,
			Score:           maxScore,
			Media:           mIdx[i].Item,
			Proceeding:      pIdx[j].Item,
		})
		diagonal := scores[i-1][j-1]
		up := scores[i][j-1]
		left := scores[i-1][j]
		switch {
		case diagonal >= up && diagonal >= left:
			i--
			j--
		case left >= up:
			i--
		default:
			j--
		}
	}

	// One side bottomed out. If the proceeding side did, the opening item
	// is either missing from the written record or fragmented across
	// several media entries; pin the remaining leading media items to the
	// same proceeding as a best guess. Symmetrically, leading proceedings
	// with no media of their own fold into the first media item.
	for i > 0 {
		path = append(path, Step{
			MediaIndex:      i,
			ProceedingIndex: j,
			Score:           maxScore,
			Media:           mIdx[i].Item,
			Proceeding:      pIdx[j].Item,
		})
		i--
	}
	for j > 0 {
		path = append(path, Step{
			MediaIndex:      i,
			ProceedingIndex: j,
			Score:           maxScore,
			Media:           mIdx[i].Item,
			Proceeding:      pIdx[j].Item,
		})
		j--
	}
	path = append(path, Step{
		MediaIndex:      0,
		ProceedingIndex: 0,
		Score:           maxScore,
		Media:           mIdx[0].Item,
		Proceeding:      pIdx[0].Item,
	})

	reverse(path)
	return path
}

func reverse(steps []Step) {
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
}
