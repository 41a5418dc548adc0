package presenter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"rcrd/internal/session"
)

func sampleSnapshot() session.Snapshot {
	return session.Snapshot{
		SessionID:  "9f1c2a",
		State:      session.StateRecording,
		Mic:        session.MicUnmuted,
		MicEnabled: true,
		Elapsed:    83 * time.Second,
		Limit:      5 * time.Minute,
		Level:      0.5,
		Markers:    2,
		OutputPath: "/home/u/rcrd-call-20260829-120000.ogg",
		Monitor:    "alsa_output.usb.monitor",
		Source:     "alsa_input.usb",
	}
}

func TestRenderWithoutTerminalPrintsPeriodically(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	// Same state across a minute of snapshots at the session tick cadence.
	snap := sampleSnapshot()
	for elapsed := time.Duration(0); elapsed < time.Minute; elapsed += 200 * time.Millisecond {
		snap.Elapsed = elapsed
		p.Render(snap)
	}
	snap.State = session.StateDone
	p.Render(snap)

	lines := strings.Count(buf.String(), "\n")
	// One line at start, one per plainInterval, one for the state change.
	want := 1 + int(time.Minute/plainInterval-1) + 1
	if lines != want {
		t.Fatalf("printed %d lines, want %d:\n%s", lines, want, buf.String())
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("plain output contains ANSI escapes:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), snap.OutputPath) {
		t.Fatalf("plain output missing output path:\n%s", buf.String())
	}
}

func TestFrameIsDeterministic(t *testing.T) {
	snap := sampleSnapshot()
	if Frame(snap, false) != Frame(snap, false) {
		t.Fatal("identical snapshots rendered different frames")
	}
}

func TestFrameContents(t *testing.T) {
	frame := Frame(sampleSnapshot(), false)

	for _, want := range []string{
		"● REC",
		"01:23 / 05:00",
		"/home/u/rcrd-call-20260829-120000.ogg",
		"alsa_output.usb.monitor",
		"alsa_input.usb [live]",
		"markers: 2",
		"[q] stop  [m] mic  [b] marker",
	} {
		if !strings.Contains(frame, want) {
			t.Errorf("frame missing %q:\n%s", want, frame)
		}
	}
}

func TestFrameMutedMic(t *testing.T) {
	snap := sampleSnapshot()
	snap.Mic = session.MicMuted
	frame := Frame(snap, false)
	if !strings.Contains(frame, "[muted]") {
		t.Fatalf("frame missing muted badge:\n%s", frame)
	}
}

func TestFrameWithoutMic(t *testing.T) {
	snap := sampleSnapshot()
	snap.MicEnabled = false
	snap.Source = ""
	frame := Frame(snap, false)

	if !strings.Contains(frame, "(not captured)") {
		t.Fatalf("frame missing mic placeholder:\n%s", frame)
	}
	if strings.Contains(frame, "[m] mic") {
		t.Fatalf("mic control offered without a source:\n%s", frame)
	}
}

func TestFrameFailureAndLogs(t *testing.T) {
	snap := sampleSnapshot()
	snap.State = session.StateFailed
	snap.FailureMsg = "pipeline exited unexpectedly (code 1)"
	snap.RecentLogs = []string{"Error while filtering"}
	frame := Frame(snap, false)

	for _, want := range []string{
		"✖ FAILED",
		"pipeline exited unexpectedly (code 1)",
		"Error while filtering",
		"session ended",
	} {
		if !strings.Contains(frame, want) {
			t.Errorf("frame missing %q:\n%s", want, frame)
		}
	}
}

func TestFrameNoColorHasNoEscapes(t *testing.T) {
	if strings.Contains(Frame(sampleSnapshot(), false), "\033[") {
		t.Fatal("plain frame contains ANSI escapes")
	}
}

func TestMeterBar(t *testing.T) {
	cases := []struct {
		level  float64
		filled int
	}{
		{0, 0},
		{0.5, meterWidth / 2},
		{1, meterWidth},
		{-3, 0},
		{7, meterWidth},
	}
	for _, tc := range cases {
		bar := meterBar(tc.level, false)
		if got := strings.Count(bar, "#"); got != tc.filled {
			t.Errorf("meterBar(%v) filled = %d, want %d", tc.level, got, tc.filled)
		}
		if len(bar) != meterWidth+2 {
			t.Errorf("meterBar(%v) width = %d", tc.level, len(bar))
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{83 * time.Second, "01:23"},
		{59 * time.Minute, "59:00"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1:02:05"},
		{-time.Second, "00:00"},
	}
	for _, tc := range cases {
		if got := formatClock(tc.d); got != tc.want {
			t.Errorf("formatClock(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestDecodeKey(t *testing.T) {
	cases := []struct {
		key  byte
		cmd  session.Command
		want bool
	}{
		{'q', session.CommandStop, true},
		{'Q', session.CommandStop, true},
		{0x1b, session.CommandStop, true},
		{0x03, session.CommandStop, true},
		{'m', session.CommandToggleMic, true},
		{'b', session.CommandMark, true},
		{'x', 0, false},
		{' ', 0, false},
	}
	for _, tc := range cases {
		cmd, ok := DecodeKey(tc.key)
		if ok != tc.want || (ok && cmd != tc.cmd) {
			t.Errorf("DecodeKey(%q) = %v, %v", tc.key, cmd, ok)
		}
	}
}
