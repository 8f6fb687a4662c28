package config

import (
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.Paths.DataDir = strings.TrimSpace(c.Paths.DataDir)
	c.Paths.CacheDir = strings.TrimSpace(c.Paths.CacheDir)
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	c.Paths.EntityDataDir = strings.TrimSpace(c.Paths.EntityDataDir)

	if c.Paths.DataDir != "" {
		expanded, err := expandPath(c.Paths.DataDir)
		if err != nil {
			return err
		}
		c.Paths.DataDir = expanded
	}

	if c.Paths.CacheDir == "" && c.Paths.DataDir != "" {
		c.Paths.CacheDir = filepath.Join(c.Paths.DataDir, "cache")
	}
	if c.Paths.EntityDataDir == "" && c.Paths.DataDir != "" {
		c.Paths.EntityDataDir = filepath.Join(c.Paths.DataDir, "entities")
	}

	for _, field := range []*string{&c.Paths.CacheDir, &c.Paths.LogDir, &c.Paths.EntityDataDir} {
		if *field == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Aligner.Binary = strings.TrimSpace(c.Aligner.Binary)
	c.Aligner.Language = strings.TrimSpace(c.Aligner.Language)
	c.NER.Endpoint = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(c.NER.Endpoint), "/"))
	c.NER.Language = strings.TrimSpace(c.NER.Language)
	c.Workflow.SessionPattern = strings.TrimSpace(c.Workflow.SessionPattern)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}
