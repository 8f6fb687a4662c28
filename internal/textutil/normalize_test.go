package textutil

import "testing"

func TestStripAccents(t *testing.T) {
	cases := map[string]string{
		"Bärbel Bas":    "Barbel Bas",
		"Müller":        "Muller",
		"Thomaé":        "Thomae",
		"plain ascii":   "plain ascii",
		"Straße bleibt": "Straße bleibt",
	}
	for in, want := range cases {
		if got := StripAccents(in); got != want {
			t.Fatalf("StripAccents(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSpeakerKey(t *testing.T) {
	cases := map[string]string{
		"Bärbel Bas":                      "barbel bas",
		"Ursula von der Leyen":            "ursula leyen",
		"Alterspräsident Wolfgang Kubiki": "wolfgang kubiki",
	}
	for in, want := range cases {
		if got := SpeakerKey(in); got != want {
			t.Fatalf("SpeakerKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanupLabel(t *testing.T) {
	cases := map[string]string{
		"Dr. h. c. Thomas Sattelberger": "dr h c thomas sattelberger",
		"BÜNDNIS 90/DIE GRÜNEN":         "bundnis die grunen",
		"  Olaf   Scholz  ":             "olaf scholz",
		"":                              "",
		"90/20":                         "",
	}
	for in, want := range cases {
		if got := CleanupLabel(in); got != want {
			t.Fatalf("CleanupLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
