// Package pipewire resolves recording endpoints by parsing the structured
// output of the PipeWire introspection tool. It never speaks the PipeWire
// protocol itself; pw-dump is consumed as a read-only one-shot query.
package pipewire

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Lister captures the introspection capability so tests can substitute
// scripted dumps for a live audio server.
type Lister interface {
	Dump(ctx context.Context) ([]byte, error)
}

// CommandLister shells out to pw-dump.
type CommandLister struct {
	Binary  string
	Timeout time.Duration
}

// NewCommandLister builds a Lister around the given pw-dump binary.
func NewCommandLister(binary string) *CommandLister {
	if binary == "" {
		binary = "pw-dump"
	}
	return &CommandLister{Binary: binary, Timeout: 10 * time.Second}
}

// Dump runs the introspection tool once and returns its raw JSON output.
func (l *CommandLister) Dump(ctx context.Context) ([]byte, error) {
	dumpCtx := ctx
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		dumpCtx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(dumpCtx, l.Binary).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s (is pipewire-utils installed?): %w", l.Binary, err)
	}
	return out, nil
}
