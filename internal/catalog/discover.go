package catalog

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"plenum/internal/config"
)

// keyPattern matches session keys: two digits of electoral period followed
// by three digits of session number.
var keyPattern = regexp.MustCompile(`^(\d{2})(\d{3})$`)

// ParseKey splits a session key into electoral period and session number.
func ParseKey(key string) (period, number int, err error) {
	match := keyPattern.FindStringSubmatch(key)
	if match == nil {
		return 0, 0, fmt.Errorf("invalid session key %q", key)
	}
	period, _ = strconv.Atoi(match[1])
	number, _ = strconv.Atoi(match[2])
	return period, number, nil
}

// FormatKey builds the session key for an electoral period and session number.
func FormatKey(period, number int) string {
	return fmt.Sprintf("%02d%03d", period, number)
}

// DiscoverKeys scans the media source directory for session keys, applying
// the configured period and session pattern filters. Keys are returned in
// ascending order.
func DiscoverKeys(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(MediaDir(cfg))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read media dir: %w", err)
	}

	var pattern *regexp.Regexp
	if cfg.Workflow.SessionPattern != "" {
		pattern, err = regexp.Compile(cfg.Workflow.SessionPattern)
		if err != nil {
			return nil, fmt.Errorf("compile session pattern: %w", err)
		}
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ok := strings.CutSuffix(entry.Name(), "-media.json")
		if !ok {
			continue
		}
		period, _, err := ParseKey(key)
		if err != nil {
			continue
		}
		if cfg.Workflow.Period != 0 && period != cfg.Workflow.Period {
			continue
		}
		if pattern != nil && !pattern.MatchString(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Sync reconciles the catalog with the source directories. Unknown sessions
// are inserted as pending; completed sessions whose sources are newer than
// their published record are queued again. It returns the number of new and
// requeued sessions.
func (s *Store) Sync(ctx context.Context, cfg *config.Config) (added, requeued int64, err error) {
	keys, err := DiscoverKeys(cfg)
	if err != nil {
		return 0, 0, err
	}

	for _, key := range keys {
		record, err := s.GetByKey(ctx, key)
		if err != nil {
			return added, requeued, err
		}

		mediaFile := MediaPath(cfg, key)
		proceedingsFile := ProceedingsPath(cfg, key)
		if _, err := os.Stat(proceedingsFile); err != nil {
			proceedingsFile = ""
		}

		if record == nil {
			period, number, err := ParseKey(key)
			if err != nil {
				continue
			}
			if _, err := s.NewSession(ctx, key, period, number, mediaFile, proceedingsFile); err != nil {
				return added, requeued, err
			}
			added++
			continue
		}

		// Pick up a proceedings file that arrived after discovery.
		if record.ProceedingsFile == "" && proceedingsFile != "" {
			record.ProceedingsFile = proceedingsFile
			if record.Status == StatusCompleted {
				record.Status = StatusPending
				record.SetProgress("Requeued", "proceedings source arrived")
				requeued++
			}
			if err := s.Update(ctx, record); err != nil {
				return added, requeued, err
			}
			continue
		}

		if record.Status == StatusCompleted && sourcesNewer(record) {
			record.Status = StatusPending
			record.ErrorMessage = ""
			record.SetProgress("Requeued", "source files changed")
			if err := s.Update(ctx, record); err != nil {
				return added, requeued, err
			}
			requeued++
		}
	}
	return added, requeued, nil
}

func sourcesNewer(record *Session) bool {
	final, err := os.Stat(record.FinalFile)
	if record.FinalFile == "" || err != nil {
		return true
	}
	for _, source := range []string{record.MediaFile, record.ProceedingsFile} {
		if source == "" {
			continue
		}
		if info, err := os.Stat(source); err == nil && info.ModTime().After(final.ModTime()) {
			return true
		}
	}
	return false
}

// IsNewer reports whether path a was modified after path b. A missing b
// counts as older; a missing a counts as not newer.
func IsNewer(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return true
	}
	return infoA.ModTime().After(infoB.ModTime())
}
