package ffmpeg

import "testing"

func TestParseLevelLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantDB float64
		wantOK bool
	}{
		{"plain", "lavfi.astats.Overall.RMS_level=-23.5", -23.5, true},
		{"frame prefix", "frame:12 pts:576000 lavfi.astats.Overall.RMS_level=-18.25", -18.25, true},
		{"silence", "lavfi.astats.Overall.RMS_level=-inf", SilenceFloorDB, true},
		{"below floor clamps", "lavfi.astats.Overall.RMS_level=-120.0", SilenceFloorDB, true},
		{"unrelated", "size=    256kB time=00:00:12.03 bitrate= 174.3kbits/s", 0, false},
		{"empty value", "lavfi.astats.Overall.RMS_level=", 0, false},
		{"garbage value", "lavfi.astats.Overall.RMS_level=abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, ok := ParseLevelLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && db != tt.wantDB {
				t.Errorf("db = %v, want %v", db, tt.wantDB)
			}
		})
	}
}
