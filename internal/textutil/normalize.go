package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining marks after NFKD decomposition, so
// "Müller" and "Mueller"-free sources key identically on "Muller".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// honorific fragments dropped from speaker labels before comparison. The
// accent-stripped form is matched, hence "altersprasident".
var speakerReplacer = strings.NewReplacer(
	" von der ", " ",
	"altersprasident ", "",
)

// SpeakerKey normalizes a person label into the comparison key used by the
// alignment scorer: accent-stripped, lower-cased, honorific fragments
// removed.
func SpeakerKey(label string) string {
	return speakerReplacer.Replace(StripAccents(strings.ToLower(label)))
}

// CleanupLabel normalizes a label for knowledge-base lookup: every
// non-letter run collapses to a single space, then the result is trimmed,
// accent-stripped and lower-cased.
func CleanupLabel(label string) string {
	if label == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(label))
	inGap := false
	for _, r := range label {
		if unicode.IsLetter(r) {
			if inGap && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inGap = false
			b.WriteRune(r)
		} else {
			inGap = true
		}
	}
	return StripAccents(strings.ToLower(strings.TrimSpace(b.String())))
}
