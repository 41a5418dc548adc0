package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("pw-dump exited 1")
	err := Wrap(ErrResolution, "resolver", "detect defaults", "introspection failed", cause)
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "pipeline", "start", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool fallback, got %v", err)
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"resolution", fmt.Errorf("boom: %w", ErrResolution), ExitResolution},
		{"spawn", Wrap(ErrSpawn, "pipeline", "start", "", errors.New("no ffmpeg")), ExitSpawn},
		{"crash", Wrap(ErrPipelineCrash, "pipeline", "", "exit 137", nil), ExitPipelineCrash},
		{"timeout", ErrShutdownTimeout, ExitShutdownTimeout},
		{"other", errors.New("unclassified"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
