// Package output generates destination paths for recorded sessions.
package output

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultName returns a generated output filename of the form
// <prefix>YYYYmmdd-HHMMSS.ogg, zero-padded, with no whitespace.
func DefaultName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%04d%02d%02d-%02d%02d%02d.ogg",
		prefix,
		now.Year(), int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Second(),
	)
}

// DefaultPath joins a generated filename onto dir. An empty dir keeps the
// file relative to the current working directory.
func DefaultPath(dir, prefix string, now time.Time) string {
	name := DefaultName(prefix, now)
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// SidecarPath returns the marker sidecar location beside outputPath.
func SidecarPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return outputPath[:len(outputPath)-len(ext)] + ".markers.json"
}
