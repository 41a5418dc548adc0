package session

import (
	"encoding/json"
	"fmt"
	"os"
)

// Marker is a user-inserted bookmark at an elapsed offset into the session.
type Marker struct {
	Seq     int     `json:"seq"`
	Offset  float64 `json:"offset_seconds"`
	Comment string  `json:"comment"`
}

// MarkerLog is the append-only bookmark list for one session. Offsets are
// taken from the monotonic session clock, so they never regress.
type MarkerLog struct {
	markers []Marker
	flushed bool
}

// Add appends a marker at the given offset and returns it.
func (l *MarkerLog) Add(offsetSeconds float64) Marker {
	marker := Marker{
		Seq:     len(l.markers) + 1,
		Offset:  offsetSeconds,
		Comment: fmt.Sprintf("Marker #%d", len(l.markers)+1),
	}
	l.markers = append(l.markers, marker)
	return marker
}

// All returns the markers in insertion order.
func (l *MarkerLog) All() []Marker {
	out := make([]Marker, len(l.markers))
	copy(out, l.markers)
	return out
}

// Len returns the number of markers recorded so far.
func (l *MarkerLog) Len() int {
	return len(l.markers)
}

// Flush writes the sidecar file once. Subsequent calls are no-ops, and an
// empty log writes nothing.
func (l *MarkerLog) Flush(path string) error {
	if l.flushed || len(l.markers) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(l.markers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write marker sidecar: %w", err)
	}
	l.flushed = true
	return nil
}
