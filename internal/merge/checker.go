package merge

import (
	"strings"

	"plenum/internal/session"
)

// Report summarizes merge quality for one session, used by the CLI to spot
// sessions that need attention.
type Report struct {
	Session string
	Items   int
	// MediaOnly counts items that carry no text content at all.
	MediaOnly int
	// Unmatched counts items with no proceeding provenance.
	Unmatched int
	// SpeakerConflicts counts items whose confidence was halved because
	// the sources disagreed on the primary speaker.
	SpeakerConflicts int
	// PresidentOnly counts items whose speech turns all come from a
	// session president, usually a sign of a mis-aligned opening.
	PresidentOnly int
}

// Check inspects a merged document and tallies its quality indicators.
func Check(doc *session.Document) Report {
	report := Report{Session: doc.Meta.Session, Items: len(doc.Data)}
	for _, item := range doc.Data {
		if len(item.TextContents) == 0 {
			report.MediaOnly++
		}
		if item.Debug == nil || len(item.Debug.ProceedingIndexes) == 0 {
			report.Unmatched++
		} else if item.Debug.Confidence > 0 && item.Debug.Confidence < 1 {
			report.SpeakerConflicts++
		}
		if presidentOnly(item) {
			report.PresidentOnly++
		}
	}
	return report
}

func presidentOnly(item *session.SpeechItem) bool {
	var speeches, president int
	for _, body := range item.Bodies() {
		if body.Type != session.BodySpeech {
			continue
		}
		speeches++
		if strings.HasSuffix(body.SpeakerStatus, "president") {
			president++
		}
	}
	return speeches > 0 && speeches == president
}
