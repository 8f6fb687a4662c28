package timing

import "plenum/internal/session"

// Run is a maximal stretch of consecutive body segments sharing one type.
type Run struct {
	Type   string
	Bodies []*session.TextBody
}

// Runs groups the item's body segments into typed runs, preserving
// document order.
func Runs(bodies []*session.TextBody) []Run {
	var runs []Run
	for _, body := range bodies {
		if body == nil {
			continue
		}
		if len(runs) == 0 || runs[len(runs)-1].Type != body.Type {
			runs = append(runs, Run{Type: body.Type})
		}
		last := len(runs) - 1
		runs[last].Bodies = append(runs[last].Bodies, body)
	}
	return runs
}

// FirstSentence returns the run's first sentence, or nil when the run has
// no sentences.
func (r Run) FirstSentence() *session.Sentence {
	for _, body := range r.Bodies {
		if len(body.Sentences) > 0 {
			return body.Sentences[0]
		}
	}
	return nil
}

// LastSentence returns the run's last sentence, or nil when the run has no
// sentences.
func (r Run) LastSentence() *session.Sentence {
	for i := len(r.Bodies) - 1; i >= 0; i-- {
		sentences := r.Bodies[i].Sentences
		if len(sentences) > 0 {
			return sentences[len(sentences)-1]
		}
	}
	return nil
}
