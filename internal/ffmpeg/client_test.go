package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"rcrd/internal/logging"
	"rcrd/internal/services"
)

func TestStartMissingBinaryIsSpawnError(t *testing.T) {
	client := NewClient("rcrd-test-no-such-binary", logging.NewNop())
	_, err := client.Start(context.Background(), Spec{
		Monitor:     "monitor",
		OutputPath:  "out.ogg",
		OpusBitrate: "128k",
		SampleRate:  48000,
		Channels:    2,
	})
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
}

func TestStartCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient("ffmpeg", logging.NewNop())
	if _, err := client.Start(ctx, Spec{}); !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
}

func TestProcessStreamsEventsAndExit(t *testing.T) {
	script := strings.Join([]string{
		"echo 'lavfi.astats.Overall.RMS_level=-20.5'",
		"echo 'stderr diagnostics' >&2",
		"exit 0",
	}, "; ")
	proc, err := startProcess("sh", []string{"-c", script}, nil)
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}

	var sawLevel, sawLog bool
	for ev := range proc.Events() {
		switch ev.Type {
		case EventLevel:
			if ev.LevelDB != -20.5 {
				t.Errorf("LevelDB = %v", ev.LevelDB)
			}
			sawLevel = true
		case EventLog:
			if ev.Line == "stderr diagnostics" {
				sawLog = true
			}
		}
	}
	if !sawLevel || !sawLog {
		t.Errorf("sawLevel=%v sawLog=%v", sawLevel, sawLog)
	}

	status := proc.ExitStatus()
	if status.Code != 0 || status.Err != nil || status.Forced {
		t.Errorf("unexpected exit status %+v", status)
	}
}

func TestProcessNonZeroExit(t *testing.T) {
	proc, err := startProcess("sh", []string{"-c", "exit 3"}, nil)
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}
	status := proc.ExitStatus()
	if status.Code != 3 {
		t.Errorf("Code = %d, want 3", status.Code)
	}
	if status.Err == nil {
		t.Error("expected non-nil Err for non-zero exit")
	}
}

func TestStopAndWaitGraceful(t *testing.T) {
	// trap makes the script exit promptly on SIGINT, standing in for
	// ffmpeg finalizing its container.
	proc, err := startProcess("sh", []string{"-c", "trap 'exit 0' INT; sleep 30 & wait"}, nil)
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := proc.StopAndWait(5 * time.Second); err != nil {
		t.Fatalf("StopAndWait: %v", err)
	}
	if status := proc.ExitStatus(); status.Forced {
		t.Errorf("graceful stop should not be marked forced: %+v", status)
	}
}

func TestStopAndWaitEscalatesToKill(t *testing.T) {
	proc, err := startProcess("sh", []string{"-c", "trap '' INT; sleep 30"}, nil)
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	err = proc.StopAndWait(200 * time.Millisecond)
	if !errors.Is(err, services.ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	if status := proc.ExitStatus(); !status.Forced {
		t.Errorf("expected forced exit, got %+v", status)
	}
}

func TestMicControlAppendsCommands(t *testing.T) {
	mic, err := PrepareMicControl()
	if err != nil {
		t.Fatalf("PrepareMicControl: %v", err)
	}
	t.Cleanup(mic.Remove)

	if err := mic.SetVolume(0); err != nil {
		t.Fatal(err)
	}
	if err := mic.SetVolume(1); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(mic.Path())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	want := []string{
		"0.0 volume@micvol volume 1",
		"0.0 volume@micvol volume 0",
		"0.0 volume@micvol volume 1",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d command lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPrepareMicControlDiscardsStaleCommands(t *testing.T) {
	// A crashed run can leave a command file behind under a PID that gets
	// recycled; prepare must start the new session from a clean seed.
	stale, err := PrepareMicControl()
	if err != nil {
		t.Fatalf("PrepareMicControl: %v", err)
	}
	t.Cleanup(stale.Remove)
	if err := stale.SetVolume(0); err != nil {
		t.Fatal(err)
	}

	mic, err := PrepareMicControl()
	if err != nil {
		t.Fatalf("PrepareMicControl: %v", err)
	}
	t.Cleanup(mic.Remove)

	data, err := os.ReadFile(mic.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "0.0 volume@micvol volume 1\n" {
		t.Fatalf("stale commands survived prepare: %q", got)
	}
}

func TestSetMicVolumeWithoutMicBranch(t *testing.T) {
	proc := &Process{}
	if err := proc.SetMicVolume(0); err == nil {
		t.Fatal("expected error for pipeline without mic branch")
	}
}
