package timing

import "plenum/internal/session"

// PropagateComments derives timecodes for comment segments from the
// aligned speech around them. A comment fills the silence between speech
// runs: it starts where the preceding run's last sentence ends and ends
// where the following run's first sentence starts. At the edges of an item
// the single available neighbor supplies both values. Only each segment's
// first sentence is stamped, and a timecode the neighbors cannot supply
// stays empty. Returns the number of segments stamped.
func PropagateComments(item *session.SpeechItem) int {
	if item == nil {
		return 0
	}
	runs := Runs(item.Bodies())
	stamped := 0
	for i, run := range runs {
		if run.Type != session.BodyComment {
			continue
		}

		var prevLast, nextFirst *session.Sentence
		if i > 0 {
			prevLast = runs[i-1].LastSentence()
		}
		if i+1 < len(runs) {
			nextFirst = runs[i+1].FirstSentence()
		}

		start := ""
		if prevLast != nil && prevLast.TimeEnd != "" {
			start = prevLast.TimeEnd
		} else if nextFirst != nil && nextFirst.TimeStart != "" {
			start = nextFirst.TimeStart
		}

		end := ""
		if nextFirst != nil && nextFirst.TimeStart != "" {
			end = nextFirst.TimeStart
		} else if prevLast != nil && prevLast.TimeEnd != "" {
			end = prevLast.TimeEnd
		}

		if start == "" && end == "" {
			continue
		}
		for _, body := range run.Bodies {
			if len(body.Sentences) == 0 {
				continue
			}
			target := body.Sentences[0]
			if start != "" {
				target.TimeStart = start
			}
			if end != "" {
				target.TimeEnd = end
			}
			stamped++
		}
	}
	return stamped
}
