package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Output.FilePrefix != defaultFilePrefix {
		t.Errorf("FilePrefix = %q, want %q", cfg.Output.FilePrefix, defaultFilePrefix)
	}
	if cfg.Tools.FFmpegBinary != defaultFFmpegBinary {
		t.Errorf("FFmpegBinary = %q, want %q", cfg.Tools.FFmpegBinary, defaultFFmpegBinary)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := strings.Join([]string{
		"[output]",
		`file_prefix = "call-"`,
		"sample_rate = 24000",
		"[tools]",
		`ffmpeg_binary = "/opt/ffmpeg/bin/ffmpeg"`,
		"stop_grace_seconds = 9",
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Output.FilePrefix != "call-" {
		t.Errorf("FilePrefix = %q", cfg.Output.FilePrefix)
	}
	if cfg.Output.SampleRate != 24000 {
		t.Errorf("SampleRate = %d", cfg.Output.SampleRate)
	}
	if cfg.Tools.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegBinary = %q", cfg.Tools.FFmpegBinary)
	}
	if cfg.Tools.StopGraceSeconds != 9 {
		t.Errorf("StopGraceSeconds = %d", cfg.Tools.StopGraceSeconds)
	}
	// Untouched sections keep defaults.
	if cfg.Output.OpusBitrate != defaultOpusBitrate {
		t.Errorf("OpusBitrate = %q", cfg.Output.OpusBitrate)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"bad sample rate", "[output]\nsample_rate = 44100\n"},
		{"bad channels", "[output]\nchannels = 6\n"},
		{"whitespace prefix", "[output]\nfile_prefix = \"my call \"\n"},
		{"bad log format", "[logging]\nformat = \"yaml\"\n"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/recordings")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "recordings") {
		t.Errorf("expandPath = %q", got)
	}
	plain, err := expandPath("/tmp/out")
	if err != nil {
		t.Fatal(err)
	}
	if plain != "/tmp/out" {
		t.Errorf("expandPath(/tmp/out) = %q", plain)
	}
}
