package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a session record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusMerging    Status = "merging"
	StatusMerged     Status = "merged"
	StatusLinking    Status = "linking"
	StatusLinked     Status = "linked"
	StatusAligning   Status = "aligning"
	StatusAligned    Status = "aligned"
	StatusExtracting Status = "extracting"
	StatusExtracted  Status = "extracted"
	StatusPublishing Status = "publishing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusMerging,
	StatusMerged,
	StatusLinking,
	StatusLinked,
	StatusAligning,
	StatusAligned,
	StatusExtracting,
	StatusExtracted,
	StatusPublishing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusMerging:    {},
	StatusLinking:    {},
	StatusAligning:   {},
	StatusExtracting: {},
	StatusPublishing: {},
}

// Session is a catalog record persisted in SQLite. SessionKey is the
// five-digit identifier combining electoral period and session number
// (session 21 of period 20 is "20021").
type Session struct {
	ID              int64
	SessionKey      string
	Period          int
	Number          int
	Status          Status
	MediaFile       string
	ProceedingsFile string
	MergedFile      string
	LinkedFile      string
	AlignedFile     string
	ExtractedFile   string
	FinalFile       string
	ErrorMessage    string
	ProgressStage   string
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing reports whether the status reflects an in-flight stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsProcessing reports whether the session is currently inside a stage.
func (s Session) IsProcessing() bool {
	return s.Status.IsProcessing()
}

// SetProgress updates the presentation fields describing stage progress.
func (s *Session) SetProgress(stage, message string) {
	s.ProgressStage = stage
	s.ProgressMessage = message
}

// SetFailed marks the session as failed with the given error message.
func (s *Session) SetFailed(message string) {
	s.Status = StatusFailed
	s.ErrorMessage = message
	s.ProgressStage = "Failed"
	s.ProgressMessage = message
}

// HealthSummary describes aggregated catalog counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}
