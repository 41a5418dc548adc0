package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
)

// MicControl is the live parameter-update channel for the mic branch: a
// command file consumed by ffmpeg's asendcmd filter. Appending a volume
// command retargets the volume@micvol filter without touching the rest of
// the graph, so mute produces no gap in the output.
type MicControl struct {
	path string
}

// PrepareMicControl creates the command file seeded with an unmute command.
func PrepareMicControl() (*MicControl, error) {
	dir := filepath.Join(os.TempDir(), "rcrd-mic")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create mic control dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("mic-%d.cmd", os.Getpid()))

	// Truncate: a crashed run with a recycled PID must not replay its old
	// volume commands into this session.
	if err := os.WriteFile(path, []byte("0.0 volume@micvol volume 1\n"), 0o644); err != nil {
		return nil, fmt.Errorf("seed mic control file: %w", err)
	}
	return &MicControl{path: path}, nil
}

// Path returns the command file location for filter-graph construction.
func (c *MicControl) Path() string {
	return c.path
}

// SetVolume appends a live volume command for the mic branch. 0 mutes,
// 1 restores unity gain.
func (c *MicControl) SetVolume(volume float64) error {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open mic control file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "0.0 volume@micvol volume %g\n", volume); err != nil {
		return fmt.Errorf("write mic volume command: %w", err)
	}
	return nil
}

// Remove deletes the command file. Safe to call after the pipeline exits.
func (c *MicControl) Remove() {
	if c == nil || c.path == "" {
		return
	}
	_ = os.Remove(c.path)
}
