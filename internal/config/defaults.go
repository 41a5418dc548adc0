package config

const (
	defaultFilePrefix       = "rcrd-call-"
	defaultOpusBitrate      = "128k"
	defaultSampleRate       = 48000
	defaultChannels         = 2
	defaultFFmpegBinary     = "ffmpeg"
	defaultPWDumpBinary     = "pw-dump"
	defaultStopGraceSeconds = 5
	defaultHistoryPath      = "~/.local/share/rcrd/history.db"
	defaultNtfyTimeout      = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogDir           = "~/.local/share/rcrd/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			FilePrefix:  defaultFilePrefix,
			OpusBitrate: defaultOpusBitrate,
			SampleRate:  defaultSampleRate,
			Channels:    defaultChannels,
		},
		Tools: Tools{
			FFmpegBinary:     defaultFFmpegBinary,
			PWDumpBinary:     defaultPWDumpBinary,
			StopGraceSeconds: defaultStopGraceSeconds,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		Monitor: Monitor{
			HotplugWarnings: true,
		},
	}
}
