// Package presenter owns the interactive terminal surface: a repainting
// status view fed by session snapshots, and a raw-mode keyboard reader that
// translates keystrokes into session commands. Log output goes to the
// session log file, never to the terminal, so the two do not interleave.
package presenter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"rcrd/internal/session"
)

// plainInterval is how often the non-tty path repeats a status line while
// the state stays the same, so piped output still shows progress.
const plainInterval = 5 * time.Second

const (
	meterWidth  = 24
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiDim     = "\033[2m"
	ansiEraseLn = "\033[2K"
)

// Presenter paints session snapshots to a terminal, repainting in place
// when the output is a tty and printing plain periodic lines otherwise.
type Presenter struct {
	mu        sync.Mutex
	out       io.Writer
	tty       bool
	lastLines int
	lastState session.State
	lastPlain time.Duration
	rendered  bool
}

// New builds a presenter for out. Color and in-place repaint are enabled
// only when out is a terminal.
func New(out io.Writer) *Presenter {
	p := &Presenter{out: out, lastState: session.StateIdle}
	if f, ok := out.(interface{ Fd() uintptr }); ok {
		p.tty = isatty.IsTerminal(f.Fd())
	}
	return p
}

// Render paints a snapshot. Safe to call from the session loop goroutine
// and from a final flush concurrently.
func (p *Presenter) Render(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.tty {
		// Without a terminal, print on state transitions and repeat the
		// line at a slow cadence in between.
		if p.rendered && snap.State == p.lastState && snap.Elapsed-p.lastPlain < plainInterval {
			return
		}
		p.rendered = true
		p.lastState = snap.State
		p.lastPlain = snap.Elapsed
		fmt.Fprintf(p.out, "%s %s %s\n", snap.State, formatClock(snap.Elapsed), snap.OutputPath)
		return
	}

	frame := Frame(snap, true)
	if p.lastLines > 0 {
		fmt.Fprintf(p.out, "\033[%dA", p.lastLines)
	}
	for _, line := range strings.Split(frame, "\n") {
		fmt.Fprintf(p.out, "\r%s%s\n", ansiEraseLn, line)
	}
	p.lastLines = strings.Count(frame, "\n") + 1
	p.lastState = snap.State
}

// Frame renders one snapshot as a multi-line string. It is a pure function
// of the snapshot; the same snapshot always yields the same frame.
func Frame(snap session.Snapshot, color bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s  %s\n",
		paint(color, ansiDim, "rcrd"),
		stateBadge(snap.State, color),
		formatClock(snap.Elapsed)+limitSuffix(snap.Limit),
	)
	fmt.Fprintf(&b, "  output   %s\n", snap.OutputPath)
	fmt.Fprintf(&b, "  monitor  %s\n", snap.Monitor)
	fmt.Fprintf(&b, "  mic      %s\n", micLine(snap, color))
	fmt.Fprintf(&b, "  level    %s  markers: %d\n", meterBar(snap.Level, color), snap.Markers)

	if snap.FailureMsg != "" {
		fmt.Fprintf(&b, "  %s %s\n", paint(color, ansiRed, "error:"), snap.FailureMsg)
	}
	for _, line := range snap.RecentLogs {
		fmt.Fprintf(&b, "  %s\n", paint(color, ansiDim, line))
	}
	b.WriteString(controlsLine(snap, color))
	return b.String()
}

func stateBadge(state session.State, color bool) string {
	switch state {
	case session.StateRecording:
		return paint(color, ansiRed, "● REC")
	case session.StateStopping:
		return paint(color, ansiYellow, "◌ STOPPING")
	case session.StateDone:
		return paint(color, ansiGreen, "✔ DONE")
	case session.StateFailed:
		return paint(color, ansiRed, "✖ FAILED")
	default:
		return state.String()
	}
}

func micLine(snap session.Snapshot, color bool) string {
	if !snap.MicEnabled {
		return paint(color, ansiDim, "(not captured)")
	}
	if snap.Mic == session.MicMuted {
		return fmt.Sprintf("%s %s", snap.Source, paint(color, ansiYellow, "[muted]"))
	}
	return fmt.Sprintf("%s %s", snap.Source, paint(color, ansiGreen, "[live]"))
}

// meterBar maps the normalized level (0..1) onto a fixed-width bar.
func meterBar(level float64, color bool) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level*meterWidth + 0.5)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", meterWidth-filled)
	code := ansiGreen
	if level > 0.85 {
		code = ansiRed
	}
	return "[" + paint(color, code, bar) + "]"
}

func controlsLine(snap session.Snapshot, color bool) string {
	if snap.State.Terminal() {
		return paint(color, ansiDim, "  session ended")
	}
	controls := "  [q] stop  [b] marker"
	if snap.MicEnabled {
		controls = "  [q] stop  [m] mic  [b] marker"
	}
	return paint(color, ansiDim, controls)
}

// formatClock renders elapsed time as MM:SS, growing to H:MM:SS past an hour.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func limitSuffix(limit time.Duration) string {
	if limit <= 0 {
		return ""
	}
	return " / " + formatClock(limit)
}

func paint(color bool, code, text string) string {
	if !color {
		return text
	}
	return code + text + ansiReset
}
