// Package session implements the recording session core: a single control
// loop that owns SessionState and MicState, funnels every external stimulus
// (keyboard commands, timer ticks, OS signals, pipeline output, pipeline
// exit) through one ordered event queue, and drives the pipeline's shutdown
// protocol.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rcrd/internal/config"
	"rcrd/internal/ffmpeg"
	"rcrd/internal/logging"
	"rcrd/internal/output"
	"rcrd/internal/pipewire"
	"rcrd/internal/services"
)

const defaultTickInterval = 200 * time.Millisecond

// Options configures one recording session.
type Options struct {
	Config     *config.Config
	Logger     *slog.Logger
	Endpoints  pipewire.Endpoints
	OutputPath string
	// Duration limits the session; zero records until an explicit stop.
	Duration time.Duration
	// Commands feeds user input. May be nil for non-interactive runs.
	Commands <-chan Command
	// Warnings feeds advisory lines (e.g. device hotplug) into the log view.
	Warnings <-chan string
	// Render is invoked with a state snapshot after each processed tick or
	// command. May be nil.
	Render       func(Snapshot)
	TickInterval time.Duration
}

// Result is the terminal outcome of a session.
type Result struct {
	SessionID  string
	State      State
	Err        error
	Elapsed    time.Duration
	Markers    []Marker
	OutputPath string
}

// Session runs one recording from spawn to terminal state.
type Session struct {
	id     string
	opts   Options
	logger *slog.Logger

	state         State
	mic           MicState
	micEnabled    bool
	failure       error
	start         time.Time
	elapsed       time.Duration
	durationFired bool

	pipeline Pipeline
	markers  MarkerLog
	meter    levelMeter
	logs     *logRing
}

// New constructs a session from options.
func New(opts Options) *Session {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	id := uuid.NewString()
	logger := logging.NewComponentLogger(opts.Logger, "session").
		With(logging.String(logging.FieldSessionID, id))
	return &Session{
		id:         id,
		opts:       opts,
		logger:     logger,
		state:      StateIdle,
		mic:        MicUnmuted,
		micEnabled: opts.Endpoints.Source != nil,
		logs:       newLogRing(8),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run starts the pipeline and processes events until the session reaches a
// terminal state. Cancelling ctx is equivalent to a stop command.
func (s *Session) Run(ctx context.Context, starter Starter) Result {
	spec := s.buildSpec()

	pipeline, err := starter.Start(ctx, spec)
	if err != nil {
		s.state = StateFailed
		s.failure = err
		s.logger.Error("pipeline start failed", logging.Error(err))
		return s.result()
	}
	s.pipeline = pipeline
	s.start = time.Now()
	s.transition(StateRecording)
	s.logger.Info("recording started",
		logging.String("output", s.opts.OutputPath),
		logging.String("monitor", spec.Monitor),
		logging.String("source", spec.Source),
		logging.Duration("limit", s.opts.Duration),
	)

	s.loop(ctx)
	s.finalize()
	return s.result()
}

func (s *Session) buildSpec() ffmpeg.Spec {
	spec := ffmpeg.Spec{
		Monitor:     s.opts.Endpoints.Monitor.Name,
		OutputPath:  s.opts.OutputPath,
		OpusBitrate: s.opts.Config.Output.OpusBitrate,
		SampleRate:  s.opts.Config.Output.SampleRate,
		Channels:    s.opts.Config.Output.Channels,
	}
	if s.opts.Endpoints.Source != nil {
		spec.Source = s.opts.Endpoints.Source.Name
	}
	return spec
}

func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	commands := s.opts.Commands
	events := s.pipeline.Events()
	ctxDone := ctx.Done()

	s.render()
	for !s.state.Terminal() {
		select {
		case <-ctxDone:
			// Terminating signals arrive as context cancellation; treat
			// them exactly like a user stop. Guard against re-entry.
			ctxDone = nil
			s.handleCommand(CommandStop)
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			s.handleCommand(cmd)
		case warning, ok := <-s.opts.Warnings:
			if !ok {
				s.opts.Warnings = nil
				continue
			}
			s.logs.add(warning)
			logging.WarnWithContext(s.logger, "device warning", "device_warning",
				logging.String("detail", warning),
				logging.String(logging.FieldImpact, "recording continues; verify audio endpoints"),
			)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(ev)
		case <-s.pipeline.Done():
			s.handleUnexpectedExit()
		case <-ticker.C:
			s.handleTick()
		}
	}
}

func (s *Session) handleCommand(cmd Command) {
	if s.state.Terminal() {
		// Commands after termination are no-ops, never errors.
		return
	}
	switch cmd {
	case CommandStop:
		if s.state == StateRecording {
			s.stop()
		}
	case CommandToggleMic:
		s.toggleMic()
	case CommandMark:
		s.mark()
	}
}

func (s *Session) toggleMic() {
	if s.state != StateRecording || !s.micEnabled {
		return
	}
	next := s.mic.Toggled()
	volume := 1.0
	if next == MicMuted {
		volume = 0.0
	}
	if err := s.pipeline.SetMicVolume(volume); err != nil {
		logging.WarnWithContext(s.logger, "mic toggle failed", "mic_toggle_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "mic state unchanged"),
		)
		return
	}
	s.mic = next
	s.logger.Info("mic toggled", logging.String("mic", s.mic.String()))
	s.render()
}

func (s *Session) mark() {
	if s.state != StateRecording {
		return
	}
	marker := s.markers.Add(time.Since(s.start).Seconds())
	s.logger.Info("marker added",
		logging.Int("seq", marker.Seq),
		logging.Float64("offset_seconds", marker.Offset),
	)
	s.render()
}

func (s *Session) handleEvent(ev ffmpeg.Event) {
	switch ev.Type {
	case ffmpeg.EventLevel:
		s.meter.observe(ev.LevelDB, ffmpeg.SilenceFloorDB)
	case ffmpeg.EventLog:
		s.logs.add(ev.Line)
	}
}

func (s *Session) handleTick() {
	s.elapsed = time.Since(s.start)
	if s.state == StateRecording && s.opts.Duration > 0 && !s.durationFired && s.elapsed >= s.opts.Duration {
		s.durationFired = true
		s.logger.Info("duration limit reached", logging.Duration("limit", s.opts.Duration))
		s.stop()
		return
	}
	s.render()
}

// stop drives Recording → Stopping → Done/Failed. The bounded wait for the
// pipeline to finalize runs here, at teardown, outside the per-tick path.
func (s *Session) stop() {
	s.transition(StateStopping)
	s.render()

	grace := time.Duration(s.opts.Config.Tools.StopGraceSeconds) * time.Second
	if err := s.pipeline.StopAndWait(grace); err != nil {
		s.failure = err
		s.transition(StateFailed)
		s.logger.Error("pipeline shutdown failed", logging.Error(err))
		return
	}

	status := s.pipeline.ExitStatus()
	if !cleanShutdown(status) {
		s.failure = services.Wrap(services.ErrPipelineCrash, "pipeline", "stop",
			fmt.Sprintf("unexpected exit during shutdown (code %d)", status.Code), status.Err)
		s.transition(StateFailed)
		s.logger.Error("pipeline exited abnormally during shutdown", logging.Error(s.failure))
		return
	}

	s.transition(StateDone)
	s.logger.Info("recording finished", logging.Duration("elapsed", time.Since(s.start)))
}

// cleanShutdown accepts exit code 0 and 255: ffmpeg finalizes the container
// on SIGINT but reports 255 for the interrupted run.
func cleanShutdown(status ffmpeg.ExitStatus) bool {
	if status.Forced {
		return false
	}
	return status.Code == 0 || status.Code == 255
}

func (s *Session) handleUnexpectedExit() {
	if s.state != StateRecording {
		return
	}
	status := s.pipeline.ExitStatus()
	s.failure = services.Wrap(services.ErrPipelineCrash, "pipeline", "",
		fmt.Sprintf("pipeline exited unexpectedly (code %d)", status.Code), status.Err)
	s.transition(StateFailed)
	// Partial output stays on disk; it may still be playable.
	s.logger.Error("pipeline crashed", logging.Error(s.failure),
		logging.String("output", s.opts.OutputPath),
	)
	s.render()
}

func (s *Session) transition(to State) {
	if s.state == to {
		return
	}
	if !CanTransition(s.state, to) {
		// Transition table violations are programming errors; log loudly
		// but keep the session moving toward a terminal state.
		s.logger.Error("illegal state transition",
			logging.String("from", s.state.String()),
			logging.String("to", to.String()),
		)
	}
	s.state = to
}

func (s *Session) finalize() {
	s.elapsed = time.Since(s.start)
	sidecar := output.SidecarPath(s.opts.OutputPath)
	if err := s.markers.Flush(sidecar); err != nil {
		logging.WarnWithContext(s.logger, "marker flush failed", "marker_flush_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "markers lost for this session"),
		)
	} else if s.markers.Len() > 0 {
		s.logger.Info("markers saved",
			logging.Int("count", s.markers.Len()),
			logging.String("sidecar", sidecar),
		)
	}
	s.render()
}

func (s *Session) render() {
	if s.opts.Render == nil {
		return
	}
	s.opts.Render(s.snapshot())
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:  s.id,
		State:      s.state,
		Mic:        s.mic,
		MicEnabled: s.micEnabled,
		Elapsed:    s.elapsed,
		Limit:      s.opts.Duration,
		Level:      s.meter.value(),
		Markers:    s.markers.Len(),
		RecentLogs: s.logs.all(),
		OutputPath: s.opts.OutputPath,
		Monitor:    s.opts.Endpoints.Monitor.Name,
	}
	if s.opts.Endpoints.Source != nil {
		snap.Source = s.opts.Endpoints.Source.Name
	}
	if s.failure != nil {
		snap.FailureMsg = s.failure.Error()
	}
	return snap
}

func (s *Session) result() Result {
	return Result{
		SessionID:  s.id,
		State:      s.state,
		Err:        s.failure,
		Elapsed:    s.elapsed,
		Markers:    s.markers.All(),
		OutputPath: s.opts.OutputPath,
	}
}
