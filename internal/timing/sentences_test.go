package timing

import (
	"strings"
	"testing"

	"plenum/internal/services/aeneas"
	"plenum/internal/session"
)

func speechItem(index int) *session.SpeechItem {
	return &session.SpeechItem{
		SpeechIndex: index,
		TextContents: []*session.TextContent{
			{
				TextBody: []*session.TextBody{
					{
						Type: session.BodySpeech,
						Sentences: []*session.Sentence{
							{Text: "Guten Morgen."},
							{Text: "Ich eröffne die Sitzung."},
						},
					},
					{
						Type: session.BodyComment,
						Sentences: []*session.Sentence{
							{Text: "(Beifall)"},
						},
					},
					{
						Type: session.BodySpeech,
						Sentences: []*session.Sentence{
							{Text: "Wir kommen zu Tagesordnungspunkt 1."},
						},
					},
				},
			},
		},
	}
}

func TestSentenceIDRoundTrip(t *testing.T) {
	id := SentenceID{Speech: 12, Content: 0, Body: 3, Sentence: 4}
	raw := id.String()
	if raw != "s12-0-3-4" {
		t.Fatalf("String = %q", raw)
	}
	parsed, ok := ParseSentenceID(raw)
	if !ok || parsed != id {
		t.Fatalf("ParseSentenceID(%q) = %+v, %v", raw, parsed, ok)
	}
	for _, bad := range []string{"", "12-0-3-4", "s12-0-3", "s12-0-3-x", "sa-b-c-d", "s1-2-3-4-5"} {
		if _, ok := ParseSentenceID(bad); ok {
			t.Fatalf("ParseSentenceID(%q) should fail", bad)
		}
	}
}

func TestTasksSkipsCommentsAndEmptySentences(t *testing.T) {
	item := speechItem(3)
	item.TextContents[0].TextBody[0].Sentences = append(
		item.TextContents[0].TextBody[0].Sentences,
		&session.Sentence{Text: "   "},
	)

	tasks := Tasks(item)
	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(tasks))
	}
	if tasks[0].ID.String() != "s3-0-0-0" {
		t.Fatalf("first task id = %q", tasks[0].ID)
	}
	if tasks[2].ID.Body != 2 {
		t.Fatalf("comment body not skipped: %+v", tasks[2].ID)
	}
}

func TestTaskFileEscapesFraming(t *testing.T) {
	tasks := []Task{{
		ID:   SentenceID{Speech: 1},
		Text: "links | rechts\nneue Zeile",
	}}
	rendered := string(TaskFile(tasks))
	if got, want := rendered, "s1-0-0-0|links   rechts neue Zeile\n"; got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
	if strings.Count(rendered, "|") != 1 {
		t.Fatalf("pipe not escaped: %q", rendered)
	}
}

func TestApplyStampsMatchingSentences(t *testing.T) {
	item := speechItem(3)
	fragments := map[string]aeneas.Fragment{
		"s3-0-0-0": {ID: "s3-0-0-0", Begin: "0.000", End: "2.500"},
		"s3-0-0-1": {ID: "s3-0-0-1", Begin: "2.500", End: "6.120"},
		// Wrong speech index and out-of-range positions must be ignored.
		"s9-0-0-0": {ID: "s9-0-0-0", Begin: "0.000", End: "1.000"},
		"s3-0-0-9": {ID: "s3-0-0-9", Begin: "0.000", End: "1.000"},
		"s3-5-0-0": {ID: "s3-5-0-0", Begin: "0.000", End: "1.000"},
	}

	applied := Apply(item, fragments)
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}
	first := item.TextContents[0].TextBody[0].Sentences[0]
	if first.TimeStart != "0.000" || first.TimeEnd != "2.500" {
		t.Fatalf("first sentence = %+v", first)
	}
	second := item.TextContents[0].TextBody[0].Sentences[1]
	if second.TimeStart != "2.500" || second.TimeEnd != "6.120" {
		t.Fatalf("second sentence = %+v", second)
	}
}
