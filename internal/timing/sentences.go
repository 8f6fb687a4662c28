package timing

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"plenum/internal/services/aeneas"
	"plenum/internal/session"
)

// SentenceID addresses one sentence inside a speech item: the item's speech
// index plus the positions of content block, body segment, and sentence.
type SentenceID struct {
	Speech   int
	Content  int
	Body     int
	Sentence int
}

// String renders the identifier used in engine task files, e.g. "s12-0-3-4".
func (id SentenceID) String() string {
	return fmt.Sprintf("s%d-%d-%d-%d", id.Speech, id.Content, id.Body, id.Sentence)
}

// ParseSentenceID parses an identifier produced by String.
func ParseSentenceID(raw string) (SentenceID, bool) {
	rest, ok := strings.CutPrefix(raw, "s")
	if !ok {
		return SentenceID{}, false
	}
	parts := strings.Split(rest, "-")
	if len(parts) != 4 {
		return SentenceID{}, false
	}
	values := make([]int, 4)
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return SentenceID{}, false
		}
		values[i] = value
	}
	return SentenceID{Speech: values[0], Content: values[1], Body: values[2], Sentence: values[3]}, true
}

// Task couples a sentence identifier with its text for the engine task file.
type Task struct {
	ID   SentenceID
	Text string
}

// Tasks returns one task per speech sentence of the item, in document
// order. Comment segments are skipped; their timecodes are derived later
// from the aligned speech around them.
func Tasks(item *session.SpeechItem) []Task {
	if item == nil {
		return nil
	}
	var tasks []Task
	for contentIndex, content := range item.TextContents {
		for bodyIndex, body := range content.TextBody {
			if body.Type != session.BodySpeech {
				continue
			}
			for sentenceIndex, sentence := range body.Sentences {
				text := strings.TrimSpace(sentence.Text)
				if text == "" {
					continue
				}
				tasks = append(tasks, Task{
					ID: SentenceID{
						Speech:   item.SpeechIndex,
						Content:  contentIndex,
						Body:     bodyIndex,
						Sentence: sentenceIndex,
					},
					Text: text,
				})
			}
		}
	}
	return tasks
}

// TaskFile renders tasks in the engine's parsed text format, one
// "id|text" record per line. Pipes and newlines inside sentence text would
// corrupt the record framing and are replaced with spaces.
func TaskFile(tasks []Task) []byte {
	var buf bytes.Buffer
	replacer := strings.NewReplacer("|", " ", "\n", " ", "\r", " ")
	for _, task := range tasks {
		buf.WriteString(task.ID.String())
		buf.WriteByte('|')
		buf.WriteString(replacer.Replace(task.Text))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Apply writes fragment timecodes back onto the item's sentences and
// returns the number of sentences stamped. Fragments with unknown or
// out-of-range identifiers are ignored.
func Apply(item *session.SpeechItem, fragments map[string]aeneas.Fragment) int {
	if item == nil {
		return 0
	}
	applied := 0
	for raw, fragment := range fragments {
		id, ok := ParseSentenceID(raw)
		if !ok || id.Speech != item.SpeechIndex {
			continue
		}
		if id.Content >= len(item.TextContents) {
			continue
		}
		content := item.TextContents[id.Content]
		if id.Body >= len(content.TextBody) {
			continue
		}
		body := content.TextBody[id.Body]
		if id.Sentence >= len(body.Sentences) {
			continue
		}
		sentence := body.Sentences[id.Sentence]
		if fragment.Begin != "" {
			sentence.TimeStart = fragment.Begin
		}
		if fragment.End != "" {
			sentence.TimeEnd = fragment.End
		}
		applied++
	}
	return applied
}
