package catalog

import (
	"path/filepath"

	"plenum/internal/config"
)

// Source file layout under the data directory:
//
//	<data_dir>/original/media/<key>-media.json
//	<data_dir>/original/proceedings/<key>-proceedings.json
//
// Stage outputs live in the cache directory as <key>-<stage>.json and the
// published record is <data_dir>/processed/<key>-session.json.

// MediaDir returns the directory holding original media source files.
func MediaDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "original", "media")
}

// ProceedingsDir returns the directory holding original proceedings files.
func ProceedingsDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "original", "proceedings")
}

// ProcessedDir returns the directory published session records are written to.
func ProcessedDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "processed")
}

// AudioDir returns the directory session audio is downloaded to for alignment.
func AudioDir(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.CacheDir, "audio")
}

// MediaPath returns the media source file for a session key.
func MediaPath(cfg *config.Config, key string) string {
	return filepath.Join(MediaDir(cfg), key+"-media.json")
}

// ProceedingsPath returns the proceedings source file for a session key.
func ProceedingsPath(cfg *config.Config, key string) string {
	return filepath.Join(ProceedingsDir(cfg), key+"-proceedings.json")
}

// StagePath returns the cache file a stage writes for a session key.
func StagePath(cfg *config.Config, key, stage string) string {
	return filepath.Join(cfg.Paths.CacheDir, key+"-"+stage+".json")
}

// FinalPath returns the published session record for a session key.
func FinalPath(cfg *config.Config, key string) string {
	return filepath.Join(ProcessedDir(cfg), key+"-session.json")
}
