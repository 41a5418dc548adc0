package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classify session failures. Exit-code mapping and the
// status ledger both key off these, so wrap every failure with exactly one.
var (
	// ErrResolution covers endpoint resolution failures: no default device
	// reported, or the introspection tool missing / emitting garbage.
	ErrResolution = errors.New("resolution error")
	// ErrSpawn covers failures to start the encoding pipeline process.
	ErrSpawn = errors.New("spawn error")
	// ErrPipelineCrash covers unexpected pipeline exits while recording.
	ErrPipelineCrash = errors.New("pipeline crash")
	// ErrShutdownTimeout covers pipelines that ignore the stop request past
	// the grace period and had to be killed.
	ErrShutdownTimeout = errors.New("shutdown timeout")
	// ErrConfiguration covers unusable configuration detected before a
	// session starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool covers auxiliary external tool failures.
	ErrExternalTool = errors.New("external tool error")
)

// Process exit codes, one per fatal failure class.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitResolution      = 2
	ExitSpawn           = 3
	ExitPipelineCrash   = 4
	ExitShutdownTimeout = 5
)

// Wrap builds an error that carries component and operation context while
// tagging it with the provided classification marker.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a session error to the process exit code contract.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrResolution):
		return ExitResolution
	case errors.Is(err, ErrSpawn):
		return ExitSpawn
	case errors.Is(err, ErrPipelineCrash):
		return ExitPipelineCrash
	case errors.Is(err, ErrShutdownTimeout):
		return ExitShutdownTimeout
	default:
		return ExitFailure
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
