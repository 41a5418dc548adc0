package session

import (
	"context"
	"time"

	"rcrd/internal/ffmpeg"
)

// Pipeline is the capability surface the session needs from a running
// encoding process. The production implementation is *ffmpeg.Process; tests
// substitute scripted fakes so state-machine behavior is exercised without
// an audio server.
type Pipeline interface {
	Events() <-chan ffmpeg.Event
	Done() <-chan struct{}
	ExitStatus() ffmpeg.ExitStatus
	SetMicVolume(volume float64) error
	StopAndWait(grace time.Duration) error
	Kill()
}

// Starter spawns a pipeline for a session spec.
type Starter interface {
	Start(ctx context.Context, spec ffmpeg.Spec) (Pipeline, error)
}

// NewStarter adapts the concrete ffmpeg client to the Starter capability.
func NewStarter(client *ffmpeg.Client) Starter {
	return clientStarter{client: client}
}

type clientStarter struct {
	client *ffmpeg.Client
}

func (s clientStarter) Start(ctx context.Context, spec ffmpeg.Spec) (Pipeline, error) {
	proc, err := s.client.Start(ctx, spec)
	if err != nil {
		return nil, err
	}
	return proc, nil
}
