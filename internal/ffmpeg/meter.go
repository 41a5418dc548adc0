package ffmpeg

import (
	"strconv"
	"strings"
)

const rmsLevelKey = "lavfi.astats.Overall.RMS_level="

// ParseLevelLine extracts an RMS level reading (dBFS) from one line of the
// metering branch. astats reports -inf for digital silence, which is mapped
// to the silence floor.
func ParseLevelLine(line string) (float64, bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, rmsLevelKey)
	if idx < 0 {
		return 0, false
	}
	value := strings.TrimSpace(trimmed[idx+len(rmsLevelKey):])
	if value == "" {
		return 0, false
	}
	if value == "-inf" || value == "inf" {
		return SilenceFloorDB, true
	}
	db, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	if db < SilenceFloorDB {
		db = SilenceFloorDB
	}
	return db, true
}

// SilenceFloorDB is the level below which readings are treated as silence.
const SilenceFloorDB = -60.0
