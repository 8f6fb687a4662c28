package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateAligner(); err != nil {
		return err
	}
	if err := c.validateNER(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir is required (create a config with 'plenum config init')")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir is required")
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.SpeakerWeight < 0 {
		return fmt.Errorf("merge.speaker_weight must not be negative (got %v)", c.Merge.SpeakerWeight)
	}
	if c.Merge.TitleWeight < 0 {
		return fmt.Errorf("merge.title_weight must not be negative (got %v)", c.Merge.TitleWeight)
	}
	if c.Merge.MergePenalty > 0 {
		return fmt.Errorf("merge.merge_penalty must not be positive (got %v)", c.Merge.MergePenalty)
	}
	if c.Merge.SplitPenalty > 0 {
		return fmt.Errorf("merge.split_penalty must not be positive (got %v)", c.Merge.SplitPenalty)
	}
	return nil
}

func (c *Config) validateAligner() error {
	if c.Aligner.Binary == "" {
		return errors.New("aligner.binary is required")
	}
	if c.Aligner.Language == "" {
		return errors.New("aligner.language is required")
	}
	if c.Aligner.TimeoutSeconds <= 0 {
		return fmt.Errorf("aligner.timeout_seconds must be positive (got %d)", c.Aligner.TimeoutSeconds)
	}
	if c.Aligner.MinCacheGiB < 0 {
		return fmt.Errorf("aligner.min_cache_gib must not be negative (got %d)", c.Aligner.MinCacheGiB)
	}
	if c.Aligner.DownloadTimeoutSeconds <= 0 {
		return fmt.Errorf("aligner.download_timeout_seconds must be positive (got %d)", c.Aligner.DownloadTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateNER() error {
	if !c.NER.Enabled {
		return nil
	}
	if c.NER.Endpoint == "" {
		return errors.New("ner.endpoint is required when ner.enabled is true")
	}
	if c.NER.Language == "" {
		return errors.New("ner.language is required when ner.enabled is true")
	}
	if c.NER.TimeoutSeconds <= 0 {
		return fmt.Errorf("ner.timeout_seconds must be positive (got %d)", c.NER.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Period < 0 {
		return fmt.Errorf("workflow.period must not be negative (got %d)", c.Workflow.Period)
	}
	if c.Workflow.SessionPattern != "" {
		if _, err := regexp.Compile(c.Workflow.SessionPattern); err != nil {
			return fmt.Errorf("workflow.session_pattern is not a valid regular expression: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be 'console' or 'json' (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
