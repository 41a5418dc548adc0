package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeTools()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Output.Directory, err = expandPath(c.Output.Directory); err != nil {
		return fmt.Errorf("output.directory: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() {
	c.Output.FilePrefix = strings.TrimSpace(c.Output.FilePrefix)
	if c.Output.FilePrefix == "" {
		c.Output.FilePrefix = defaultFilePrefix
	}
	c.Output.OpusBitrate = strings.TrimSpace(c.Output.OpusBitrate)
	if c.Output.OpusBitrate == "" {
		c.Output.OpusBitrate = defaultOpusBitrate
	}
	if c.Output.SampleRate <= 0 {
		c.Output.SampleRate = defaultSampleRate
	}
	if c.Output.Channels <= 0 {
		c.Output.Channels = defaultChannels
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpegBinary = strings.TrimSpace(c.Tools.FFmpegBinary)
	if c.Tools.FFmpegBinary == "" {
		c.Tools.FFmpegBinary = defaultFFmpegBinary
	}
	c.Tools.PWDumpBinary = strings.TrimSpace(c.Tools.PWDumpBinary)
	if c.Tools.PWDumpBinary == "" {
		c.Tools.PWDumpBinary = defaultPWDumpBinary
	}
	if c.Tools.StopGraceSeconds <= 0 {
		c.Tools.StopGraceSeconds = defaultStopGraceSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
