package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const encoderProbeTimeout = 5 * time.Second

// CheckOpusEncoder verifies that the configured FFmpeg build carries the
// libopus encoder the recording pipeline requires. Builds without libopus
// exist (some distro minimal packages), so this is probed rather than
// assumed.
func CheckOpusEncoder(ctx context.Context, ffmpegBinary string) Status {
	result := Status{
		Name:        RequirementOpus,
		Command:     ffmpegBinary,
		Description: "Opus encoder inside FFmpeg",
	}

	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		result.Detail = "ffmpeg command not configured"
		return result
	}
	if _, err := exec.LookPath(binary); err != nil {
		result.Detail = "ffmpeg binary not found"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-encoders").Output()
	if err != nil {
		result.Detail = "could not list ffmpeg encoders: " + err.Error()
		return result
	}
	if !strings.Contains(string(out), "libopus") {
		result.Detail = "ffmpeg build lacks the libopus encoder"
		return result
	}

	result.Available = true
	return result
}
