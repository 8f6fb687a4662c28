package merge

import (
	"testing"

	"plenum/internal/session"
)

func TestCheckTalliesQualityIndicators(t *testing.T) {
	doc := &session.Document{
		Meta: session.Meta{Session: "20021"},
		Data: []*session.SpeechItem{
			{
				// Clean merged item.
				SpeechIndex:  1,
				TextContents: []*session.TextContent{{TextBody: []*session.TextBody{{Type: session.BodySpeech}}}},
				Debug:        &session.Provenance{ProceedingIndexes: []int{1}, Confidence: 1.0},
			},
			{
				// Media-only item: no text and no proceeding provenance.
				SpeechIndex: 2,
				Media:       &session.MediaBlock{VideoFileURI: "https://media.example/2.mp4"},
			},
			{
				// Speaker conflict flagged by the halved confidence.
				SpeechIndex:  3,
				TextContents: []*session.TextContent{{TextBody: []*session.TextBody{{Type: session.BodySpeech}}}},
				Debug:        &session.Provenance{ProceedingIndexes: []int{3}, Confidence: 0.5},
			},
			{
				// All speech turns from the presidency.
				SpeechIndex: 4,
				TextContents: []*session.TextContent{{TextBody: []*session.TextBody{
					{Type: session.BodySpeech, SpeakerStatus: "president"},
					{Type: session.BodyComment},
					{Type: session.BodySpeech, SpeakerStatus: "vice-president"},
				}}},
				Debug: &session.Provenance{ProceedingIndexes: []int{4}, Confidence: 1.0},
			},
		},
	}

	report := Check(doc)
	if report.Session != "20021" {
		t.Fatalf("session = %q", report.Session)
	}
	if report.Items != 4 {
		t.Fatalf("items = %d, want 4", report.Items)
	}
	if report.MediaOnly != 1 {
		t.Fatalf("mediaOnly = %d, want 1", report.MediaOnly)
	}
	if report.Unmatched != 1 {
		t.Fatalf("unmatched = %d, want 1", report.Unmatched)
	}
	if report.SpeakerConflicts != 1 {
		t.Fatalf("speakerConflicts = %d, want 1", report.SpeakerConflicts)
	}
	if report.PresidentOnly != 1 {
		t.Fatalf("presidentOnly = %d, want 1", report.PresidentOnly)
	}
}

func TestCheckMixedSpeakersIsNotPresidentOnly(t *testing.T) {
	doc := &session.Document{
		Meta: session.Meta{Session: "20021"},
		Data: []*session.SpeechItem{{
			SpeechIndex: 1,
			TextContents: []*session.TextContent{{TextBody: []*session.TextBody{
				{Type: session.BodySpeech, SpeakerStatus: "president"},
				{Type: session.BodySpeech, SpeakerStatus: "main-speaker"},
			}}},
			Debug: &session.Provenance{ProceedingIndexes: []int{1}, Confidence: 1.0},
		}},
	}
	if report := Check(doc); report.PresidentOnly != 0 {
		t.Fatalf("presidentOnly = %d, want 0", report.PresidentOnly)
	}
}
