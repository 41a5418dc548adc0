// Package ffmpeg supervises the external mixing and encoding process for a
// recording session: it builds the filter graph, owns the process lifetime,
// streams metering and log output, and implements the graceful stop
// protocol with bounded escalation.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"rcrd/internal/logging"
	"rcrd/internal/services"
)

// EventType discriminates pipeline events.
type EventType int

const (
	// EventLevel carries an RMS level sample from the metering branch.
	EventLevel EventType = iota
	// EventLog carries one line of pipeline diagnostic output.
	EventLog
)

// Event is a single observation from the running pipeline.
type Event struct {
	Type    EventType
	LevelDB float64
	Line    string
}

// ExitStatus describes how the pipeline process ended.
type ExitStatus struct {
	Code   int
	Forced bool // true when the process had to be killed
	Err    error
}

// Client builds and starts encoding pipelines.
type Client struct {
	binary string
	logger *slog.Logger
}

// NewClient constructs a pipeline client around the given ffmpeg binary.
func NewClient(binary string, logger *slog.Logger) *Client {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Client{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Start spawns the pipeline for the given spec. Failure to start is a
// SpawnError; nothing is retried and no output file is created.
func (c *Client) Start(ctx context.Context, spec Spec) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrSpawn, "pipeline", "start", "", err)
	}

	var mic *MicControl
	if spec.Source != "" {
		var err error
		mic, err = PrepareMicControl()
		if err != nil {
			return nil, services.Wrap(services.ErrSpawn, "pipeline", "prepare mic control", "", err)
		}
	}

	args := BuildArgs(spec, micPath(mic))
	c.logger.Debug("starting pipeline",
		logging.String("binary", c.binary),
		logging.Any("args", args),
	)

	proc, err := startProcess(c.binary, args, mic)
	if err != nil {
		if mic != nil {
			mic.Remove()
		}
		return nil, services.Wrap(services.ErrSpawn, "pipeline", "start", fmt.Sprintf("failed to start %s", c.binary), err)
	}
	return proc, nil
}

func micPath(mic *MicControl) string {
	if mic == nil {
		return ""
	}
	return mic.Path()
}

// Process is the exclusive handle to a spawned pipeline. It is not shared:
// only the supervisor signals or reads from the external process.
type Process struct {
	cmd    *exec.Cmd
	mic    *MicControl
	events chan Event

	done     chan struct{}
	forced   atomic.Bool
	exitOnce sync.Once
	exit     ExitStatus
}

func startProcess(binary string, args []string, mic *MicControl) (*Process, error) {
	cmd := exec.Command(binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &Process{
		cmd:    cmd,
		mic:    mic,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if db, ok := ParseLevelLine(scanner.Text()); ok {
				p.emit(Event{Type: EventLevel, LevelDB: db})
			}
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			p.emit(Event{Type: EventLog, Line: scanner.Text()})
		}
	}()

	go func() {
		wg.Wait()
		err := cmd.Wait()
		status := ExitStatus{Code: 0}
		if err != nil {
			status.Err = err
			if exitErr, ok := err.(*exec.ExitError); ok {
				status.Code = exitErr.ExitCode()
			} else {
				status.Code = -1
			}
		}
		status.Forced = p.forced.Load()
		p.exitOnce.Do(func() { p.exit = status })
		close(p.events)
		close(p.done)
		if p.mic != nil {
			p.mic.Remove()
		}
	}()

	return p, nil
}

// emit delivers best-effort: metering and log lines are advisory and must
// never block pipeline teardown behind a slow consumer.
func (p *Process) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// Events streams level samples and log lines. Closed once the process exits.
func (p *Process) Events() <-chan Event {
	return p.events
}

// Done is closed when the process has exited and ExitStatus is valid.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitStatus reports how the process ended. Valid only after Done.
func (p *Process) ExitStatus() ExitStatus {
	<-p.done
	return p.exit
}

// SetMicVolume applies a live gain change to the mic branch.
func (p *Process) SetMicVolume(volume float64) error {
	if p.mic == nil {
		return fmt.Errorf("pipeline has no mic branch")
	}
	return p.mic.SetVolume(volume)
}

// StopAndWait requests a graceful finalize (SIGINT, which makes ffmpeg close
// the container so the output stays playable) and waits up to grace for the
// process to exit. On timeout the process is killed and ShutdownTimeout is
// returned; whatever output was flushed is left in place.
func (p *Process) StopAndWait(grace time.Duration) error {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Signal(os.Interrupt)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
	}

	p.forced.Store(true)
	p.Kill()
	<-p.done
	return services.Wrap(services.ErrShutdownTimeout, "pipeline", "stop",
		fmt.Sprintf("pipeline did not exit cleanly within %s", grace), nil)
}

// Kill forcibly terminates the process. The waiter goroutine still observes
// the exit and closes Done.
func (p *Process) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
