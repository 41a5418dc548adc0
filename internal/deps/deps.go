// Package deps verifies the external tools a recording session shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"rcrd/internal/config"
)

// Requirement names, shared with preflight failure classification.
const (
	RequirementFFmpeg = "FFmpeg"
	RequirementPWDump = "pw-dump"
	RequirementOpus   = "libopus"
)

// Requirement defines an external binary rcrd relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig builds the requirement list for the configured tool paths.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        RequirementFFmpeg,
			Command:     cfg.Tools.FFmpegBinary,
			Description: "captures and encodes the recording pipeline",
		},
		{
			Name:        RequirementPWDump,
			Command:     cfg.Tools.PWDumpBinary,
			Description: "introspects audio server metadata for endpoint resolution",
		},
	}
}

// CheckBinaries evaluates the requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		} else {
			status.Command = resolved
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional tools.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
