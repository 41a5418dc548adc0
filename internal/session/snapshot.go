package session

import "time"

// Snapshot is the immutable view handed to the presenter after each
// processed event. The presenter never reaches back into session state.
type Snapshot struct {
	SessionID  string
	State      State
	Mic        MicState
	MicEnabled bool
	Elapsed    time.Duration
	Limit      time.Duration
	Level      float64 // smoothed magnitude, 0..1
	Markers    int
	RecentLogs []string
	OutputPath string
	Monitor    string
	Source     string
	FailureMsg string
}

// levelMeter smooths raw dB readings into a 0..1 magnitude with an
// exponential moving average, keeping the meter readable at tick cadence.
type levelMeter struct {
	smoothed float64
	primed   bool
}

const meterAlpha = 0.4

func (m *levelMeter) observe(db, floorDB float64) {
	magnitude := (db - floorDB) / -floorDB
	if magnitude < 0 {
		magnitude = 0
	}
	if magnitude > 1 {
		magnitude = 1
	}
	if !m.primed {
		m.smoothed = magnitude
		m.primed = true
		return
	}
	m.smoothed = meterAlpha*magnitude + (1-meterAlpha)*m.smoothed
}

func (m *levelMeter) value() float64 {
	return m.smoothed
}

// logRing keeps the most recent pipeline diagnostic lines for the status
// view.
type logRing struct {
	lines []string
	limit int
}

func newLogRing(limit int) *logRing {
	return &logRing{limit: limit}
}

func (r *logRing) add(line string) {
	if line == "" {
		return
	}
	r.lines = append(r.lines, line)
	if len(r.lines) > r.limit {
		r.lines = r.lines[len(r.lines)-r.limit:]
	}
}

func (r *logRing) all() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
