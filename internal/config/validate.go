package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.ContainsAny(c.Output.FilePrefix, " \t") {
		return errors.New("output.file_prefix must not contain whitespace")
	}
	switch c.Output.SampleRate {
	case 8000, 12000, 16000, 24000, 48000:
	default:
		return fmt.Errorf("output.sample_rate %d is not a valid Opus rate", c.Output.SampleRate)
	}
	if c.Output.Channels != 1 && c.Output.Channels != 2 {
		return errors.New("output.channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.StopGraceSeconds <= 0 {
		return errors.New("tools.stop_grace_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
