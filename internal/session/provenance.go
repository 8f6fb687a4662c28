package session

// Provenance accumulates cross-stage diagnostic metadata for an item. It
// replaces the free-form debug bag the exchange format historically used
// with named optional fields; downstream status checks key off field
// presence (AlignSeconds set means the session has been time-aligned).
type Provenance struct {
	// ProceedingIndex is the speech index of the first matched proceeding.
	ProceedingIndex int `json:"proceedingIndex,omitempty"`
	// ProceedingIndexes lists every matched proceeding's speech index.
	ProceedingIndexes []int `json:"proceedingIndexes,omitempty"`
	// MediaIndex is the speech index of the media item this record derives from.
	MediaIndex int `json:"mediaIndex,omitempty"`
	// LinkedMediaIndexes lists media indices sharing any of this item's
	// proceedings, surfacing proceedings split across recordings.
	LinkedMediaIndexes []int `json:"linkedMediaIndexes,omitempty"`
	// Confidence is the merge confidence score, 1.0 unless the sources
	// disagreed about the primary speaker.
	Confidence float64 `json:"confidence,omitempty"`
	// AlignSeconds is the wall-clock duration of the forced-alignment run.
	AlignSeconds float64 `json:"alignDuration,omitempty"`
	// NERSeconds is the wall-clock duration of entity extraction.
	NERSeconds float64 `json:"nerDuration,omitempty"`
}

// Clone returns a deep copy of the provenance record.
func (p *Provenance) Clone() *Provenance {
	if p == nil {
		return nil
	}
	out := *p
	if p.ProceedingIndexes != nil {
		out.ProceedingIndexes = make([]int, len(p.ProceedingIndexes))
		copy(out.ProceedingIndexes, p.ProceedingIndexes)
	}
	if p.LinkedMediaIndexes != nil {
		out.LinkedMediaIndexes = make([]int, len(p.LinkedMediaIndexes))
		copy(out.LinkedMediaIndexes, p.LinkedMediaIndexes)
	}
	return &out
}

// Aligned reports whether the forced-alignment stage has touched this item.
func (p *Provenance) Aligned() bool {
	return p != nil && p.AlignSeconds > 0
}

// Extracted reports whether entity extraction has touched this item.
func (p *Provenance) Extracted() bool {
	return p != nil && p.NERSeconds > 0
}
