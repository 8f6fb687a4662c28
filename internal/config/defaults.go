package config

const (
	defaultDataDir       = "~/.local/share/plenum/data"
	defaultLogDir        = "~/.local/share/plenum/logs"
	defaultSpeakerWeight = 4
	defaultTitleWeight   = 2
	defaultMergePenalty  = -1
	defaultSplitPenalty  = -1

	defaultAlignerBinary          = "python3 -m aeneas.tools.execute_task"
	defaultAlignerLanguage        = "deu"
	defaultAlignerTimeoutSeconds  = 3600
	defaultMinCacheGiB            = 1
	defaultDownloadTimeoutSeconds = 1800

	defaultNEREndpoint       = "http://localhost:8090/service"
	defaultNERLanguage       = "de"
	defaultNERTimeoutSeconds = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with default values. Paths are kept
// in their unexpanded form; Load normalizes them.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Merge: Merge{
			SpeakerWeight: defaultSpeakerWeight,
			TitleWeight:   defaultTitleWeight,
			MergePenalty:  defaultMergePenalty,
			SplitPenalty:  defaultSplitPenalty,
		},
		Aligner: Aligner{
			Binary:                 defaultAlignerBinary,
			Language:               defaultAlignerLanguage,
			TimeoutSeconds:         defaultAlignerTimeoutSeconds,
			MinCacheGiB:            defaultMinCacheGiB,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		NER: NER{
			Enabled:        false,
			Endpoint:       defaultNEREndpoint,
			Language:       defaultNERLanguage,
			TimeoutSeconds: defaultNERTimeoutSeconds,
		},
		Workflow: Workflow{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
