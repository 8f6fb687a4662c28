package session

// Person context tags. After merge the first person of an item must carry
// ContextMainSpeaker; a conflicting proceedings-sourced primary speaker is
// relabelled ContextMainProceedingSpeaker.
const (
	ContextMainSpeaker           = "main-speaker"
	ContextMainProceedingSpeaker = "main-proceeding-speaker"
	ContextSpeaker               = "speaker"
)

// Body segment types.
const (
	BodySpeech  = "speech"
	BodyComment = "comment"
)

// NumberBlock wraps a plain number reference (electoral period).
type NumberBlock struct {
	Number int `json:"number"`
}

// SessionBlock carries the per-item session reference with its date range.
type SessionBlock struct {
	Number    int    `json:"number"`
	DateStart string `json:"dateStart,omitempty"`
	DateEnd   string `json:"dateEnd,omitempty"`
}

// AgendaItem identifies the agenda item a speech belongs to.
type AgendaItem struct {
	ID            string `json:"id,omitempty"`
	OfficialTitle string `json:"officialTitle"`
	Title         string `json:"title,omitempty"`
}

// EntityRef links a label to a stable external knowledge-base identifier.
type EntityRef struct {
	WID   string `json:"wid"`
	Label string `json:"label,omitempty"`
	WType string `json:"wtype,omitempty"`
}

// Person is a value object: copied into merged items, never shared.
type Person struct {
	Label   string `json:"label"`
	Context string `json:"context,omitempty"`
	Role    string `json:"role,omitempty"`
	Faction string `json:"faction,omitempty"`
	// WID and WType are filled by entity linking when the label resolves
	// to a known person.
	WID   string `json:"wid,omitempty"`
	WType string `json:"wtype,omitempty"`
	// FactionRef is the linked counterpart of Faction. The source label
	// stays in Faction untouched.
	FactionRef *EntityRef `json:"factionRef,omitempty"`
}

// Entity is a named entity extracted from a sentence.
type Entity struct {
	Label string  `json:"label"`
	WID   string  `json:"wid,omitempty"`
	WType string  `json:"wtype,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// Sentence is one transcript sentence. Timecodes are engine-native strings
// and stay empty until forced alignment has run.
type Sentence struct {
	Text      string   `json:"text"`
	TimeStart string   `json:"timeStart,omitempty"`
	TimeEnd   string   `json:"timeEnd,omitempty"`
	Entities  []Entity `json:"entities,omitempty"`
}

// TextBody is a run of sentences of a single type (speech or comment).
type TextBody struct {
	Type          string      `json:"type"`
	Speaker       string      `json:"speaker,omitempty"`
	SpeakerStatus string      `json:"speakerstatus,omitempty"`
	Sentences     []*Sentence `json:"sentences,omitempty"`
}

// TextContent is one transcript block from the proceedings source.
type TextContent struct {
	Type         string      `json:"type,omitempty"`
	OriginTextID string      `json:"originTextID,omitempty"`
	TextBody     []*TextBody `json:"textBody,omitempty"`
}

// DocumentRef points at an official document referenced by a speech.
type DocumentRef struct {
	Type  string `json:"type,omitempty"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	URL   string `json:"sourceURI,omitempty"`
}

// MediaBlock carries the recording pointers from the media source.
type MediaBlock struct {
	VideoFileURI  string  `json:"videoFileURI,omitempty"`
	AudioFileURI  string  `json:"audioFileURI,omitempty"`
	ThumbnailURI  string  `json:"thumbnailURI,omitempty"`
	SourcePage    string  `json:"sourcePage,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	Aligned       bool    `json:"aligned,omitempty"`
	Creator       string  `json:"creator,omitempty"`
	License       string  `json:"license,omitempty"`
	OriginMediaID string  `json:"originMediaID,omitempty"`
}

// SpeechItem is the unit that gets aligned and merged. SpeechIndex is the
// 1-based position within the item's source list.
type SpeechItem struct {
	SpeechIndex     int            `json:"speechIndex"`
	OriginTextID    string         `json:"originTextID,omitempty"`
	ElectoralPeriod *NumberBlock   `json:"electoralPeriod,omitempty"`
	Session         *SessionBlock  `json:"session,omitempty"`
	AgendaItem      *AgendaItem    `json:"agendaItem,omitempty"`
	People          []*Person      `json:"people,omitempty"`
	TextContents    []*TextContent `json:"textContents,omitempty"`
	Documents       []*DocumentRef `json:"documents,omitempty"`
	Media           *MediaBlock    `json:"media,omitempty"`
	Debug           *Provenance    `json:"debug,omitempty"`
}

// OfficialTitle returns the agenda item title or "" when absent.
func (s *SpeechItem) OfficialTitle() string {
	if s == nil || s.AgendaItem == nil {
		return ""
	}
	return s.AgendaItem.OfficialTitle
}

// EnsureDebug returns the item's provenance record, allocating it on first use.
func (s *SpeechItem) EnsureDebug() *Provenance {
	if s.Debug == nil {
		s.Debug = &Provenance{}
	}
	return s.Debug
}

// Clone returns a deep copy of the item.
func (s *SpeechItem) Clone() *SpeechItem {
	if s == nil {
		return nil
	}
	out := *s
	if s.ElectoralPeriod != nil {
		cp := *s.ElectoralPeriod
		out.ElectoralPeriod = &cp
	}
	if s.Session != nil {
		cp := *s.Session
		out.Session = &cp
	}
	if s.AgendaItem != nil {
		cp := *s.AgendaItem
		out.AgendaItem = &cp
	}
	if s.Media != nil {
		cp := *s.Media
		out.Media = &cp
	}
	if s.Debug != nil {
		out.Debug = s.Debug.Clone()
	}
	if s.People != nil {
		out.People = make([]*Person, len(s.People))
		for i, p := range s.People {
			out.People[i] = p.Clone()
		}
	}
	if s.TextContents != nil {
		out.TextContents = make([]*TextContent, len(s.TextContents))
		for i, tc := range s.TextContents {
			out.TextContents[i] = tc.Clone()
		}
	}
	if s.Documents != nil {
		out.Documents = make([]*DocumentRef, len(s.Documents))
		for i, doc := range s.Documents {
			cp := *doc
			out.Documents[i] = &cp
		}
	}
	return &out
}

// Clone returns a deep copy of the person.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	out := *p
	if p.FactionRef != nil {
		cp := *p.FactionRef
		out.FactionRef = &cp
	}
	return &out
}

// Clone returns a deep copy of the content block.
func (tc *TextContent) Clone() *TextContent {
	if tc == nil {
		return nil
	}
	out := *tc
	if tc.TextBody != nil {
		out.TextBody = make([]*TextBody, len(tc.TextBody))
		for i, body := range tc.TextBody {
			out.TextBody[i] = body.Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the body segment.
func (b *TextBody) Clone() *TextBody {
	if b == nil {
		return nil
	}
	out := *b
	if b.Sentences != nil {
		out.Sentences = make([]*Sentence, len(b.Sentences))
		for i, sentence := range b.Sentences {
			cp := *sentence
			if sentence.Entities != nil {
				cp.Entities = make([]Entity, len(sentence.Entities))
				copy(cp.Entities, sentence.Entities)
			}
			out.Sentences[i] = &cp
		}
	}
	return &out
}

// Bodies returns all body segments of the item in document order.
func (s *SpeechItem) Bodies() []*TextBody {
	if s == nil {
		return nil
	}
	var bodies []*TextBody
	for _, content := range s.TextContents {
		bodies = append(bodies, content.TextBody...)
	}
	return bodies
}
