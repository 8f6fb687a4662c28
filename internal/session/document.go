package session

import (
	"sort"
	"time"
)

// Meta carries session-level identifiers and processing history.
type Meta struct {
	Session    string            `json:"session"`
	Period     int               `json:"period,omitempty"`
	DateStart  string            `json:"dateStart,omitempty"`
	DateEnd    string            `json:"dateEnd,omitempty"`
	Processing map[string]string `json:"processing,omitempty"`
}

// Document is the exchange format passed between pipeline stages.
type Document struct {
	Meta Meta          `json:"meta"`
	Data []*SpeechItem `json:"data"`
}

// TimestampFormat is the layout used for processing-stage timestamps.
const TimestampFormat = "2006-01-02T15:04:05"

// Stamp records a processing timestamp for the named stage.
func (m *Meta) Stamp(stage string, now time.Time) {
	if m.Processing == nil {
		m.Processing = make(map[string]string, 1)
	}
	m.Processing[stage] = now.Format(TimestampFormat)
}

// MergeProcessing folds another processing map into this meta. Existing
// entries are overwritten by the other map's values.
func (m *Meta) MergeProcessing(other map[string]string) {
	if len(other) == 0 {
		return
	}
	if m.Processing == nil {
		m.Processing = make(map[string]string, len(other))
	}
	for stage, ts := range other {
		m.Processing[stage] = ts
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Meta: d.Meta}
	if d.Meta.Processing != nil {
		out.Meta.Processing = make(map[string]string, len(d.Meta.Processing))
		for k, v := range d.Meta.Processing {
			out.Meta.Processing[k] = v
		}
	}
	if d.Data != nil {
		out.Data = make([]*SpeechItem, len(d.Data))
		for i, item := range d.Data {
			out.Data[i] = item.Clone()
		}
	}
	return out
}

// ProcessingStages returns the stages recorded in the processing map in
// deterministic order.
func (m Meta) ProcessingStages() []string {
	stages := make([]string, 0, len(m.Processing))
	for stage := range m.Processing {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	return stages
}
