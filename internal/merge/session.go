package merge

import (
	"log/slog"
	"regexp"
	"sort"
	"time"

	"plenum/internal/logging"
	"plenum/internal/services"
	"plenum/internal/session"
)

// StageMerge is the processing-map key stamped on merged documents.
const StageMerge = "merge"

var utcOffsetPattern = regexp.MustCompile(`^[+-]\d\d:\d\d$`)

func isUTCOffset(s string) bool {
	return utcOffsetPattern.MatchString(s)
}

// Documents merges a proceedings document and a media document into the
// unified session record.
//
// A missing proceedings document degrades gracefully: the media document is
// passed through (stamped with a merge timestamp) so a session is always at
// least media-only publishable. A missing media document is a hard failure
// for the session; media is the backbone every proceeding is matched
// against.
func Documents(proceedings, media *session.Document, cfg Config, logger *slog.Logger, now time.Time) (*session.Document, error) {
	logger = logging.NewComponentLogger(logger, "merge")
	if media == nil {
		return nil, services.Wrap(services.ErrMissingSource, StageMerge, "load media",
			"no media document for session", nil)
	}
	if proceedings == nil || len(proceedings.Data) == 0 {
		logger.Debug("no proceedings - publishing media as merged data",
			logging.String("session", media.Meta.Session))
		out := media.Clone()
		out.Meta.Stamp(StageMerge, now)
		return out, nil
	}

	path := Align(proceedings.Data, media.Data, cfg)
	merger := NewMerger(logger)

	var speeches []*session.SpeechItem
	for _, group := range groupByMedia(path) {
		matched := make([]*session.SpeechItem, len(group))
		for i, step := range group {
			matched[i] = step.Proceeding
		}
		item, err := merger.MergeItem(group[0].Media, matched)
		if err != nil {
			// Invariant violations drop the item, not the session.
			continue
		}
		speeches = append(speeches, item)
	}

	linkMediaIndexes(speeches)

	// The official wall-clock session times live in the proceedings, but a
	// reliable UTC offset is only present in media timestamps. Graft it.
	dateStart := proceedings.Meta.DateStart
	dateEnd := proceedings.Meta.DateEnd
	if offset := tailOffset(media.Meta.DateStart); offset != "" && tailOffset(dateStart) == "" {
		dateStart += offset
		dateEnd += offset
	}
	for _, speech := range speeches {
		if speech.Session == nil {
			speech.Session = &session.SessionBlock{}
		}
		speech.Session.DateStart = dateStart
		speech.Session.DateEnd = dateEnd
	}

	meta := session.Meta{
		Session:   proceedings.Meta.Session,
		Period:    proceedings.Meta.Period,
		DateStart: dateStart,
		DateEnd:   dateEnd,
	}
	meta.MergeProcessing(proceedings.Meta.Processing)
	meta.MergeProcessing(media.Meta.Processing)
	meta.Stamp(StageMerge, now)

	return &session.Document{Meta: meta, Data: speeches}, nil
}

// tailOffset returns the trailing ±HH:MM offset of an ISO timestamp, or ""
// when none is present.
func tailOffset(ts string) string {
	if len(ts) < 6 {
		return ""
	}
	tail := ts[len(ts)-6:]
	if !isUTCOffset(tail) {
		return ""
	}
	return tail
}

// groupByMedia splits the ascending alignment path into runs sharing a
// media index, preserving step order within each run.
func groupByMedia(path []Step) [][]Step {
	var groups [][]Step
	for i := 0; i < len(path); {
		j := i + 1
		for j < len(path) && path[j].MediaIndex == path[i].MediaIndex {
			j++
		}
		groups = append(groups, path[i:j])
		i = j
	}
	return groups
}

// linkMediaIndexes back-fills each merged item with every media index that
// shares one of its proceedings: the case where one written entry had to be
// split across several recordings, which consumers must display distinctly.
func linkMediaIndexes(speeches []*session.SpeechItem) {
	proceedingToMedia := make(map[int]map[int]struct{})
	for _, speech := range speeches {
		mid := speech.Debug.MediaIndex
		for _, pid := range speech.Debug.ProceedingIndexes {
			set := proceedingToMedia[pid]
			if set == nil {
				set = make(map[int]struct{})
				proceedingToMedia[pid] = set
			}
			set[mid] = struct{}{}
		}
	}
	for _, speech := range speeches {
		linked := make(map[int]struct{})
		for _, pid := range speech.Debug.ProceedingIndexes {
			for mid := range proceedingToMedia[pid] {
				linked[mid] = struct{}{}
			}
		}
		indexes := make([]int, 0, len(linked))
		for mid := range linked {
			indexes = append(indexes, mid)
		}
		sort.Ints(indexes)
		speech.Debug.LinkedMediaIndexes = indexes
	}
}
