package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec describes one encoding pipeline invocation.
type Spec struct {
	Monitor     string // sink-monitor node to tap
	Source      string // microphone node; empty disables the mic branch
	OutputPath  string
	OpusBitrate string
	SampleRate  int
	Channels    int
}

// BuildArgs assembles the full ffmpeg argument list for a session.
//
// The pulse capture inputs are non-destructive taps: other consumers of the
// monitor and source streams keep running unaffected. When a mic is present
// both inputs share ffmpeg's output clock through amix, keeping the remote
// and local sides time-aligned. Mic gain is steered live through the
// asendcmd command file so mute never restarts the pipeline. The mixed
// signal is split into the Opus file branch and an astats metering branch
// whose RMS readings are printed on stdout.
func BuildArgs(spec Spec, micCmdPath string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "info"}

	args = append(args, "-f", "pulse", "-i", spec.Monitor)
	if spec.Source != "" {
		args = append(args, "-f", "pulse", "-i", spec.Source)
	}

	args = append(args, "-filter_complex", filterGraph(spec, micCmdPath))

	args = append(args,
		"-map", "[rec]",
		"-ac", strconv.Itoa(spec.Channels),
		"-ar", strconv.Itoa(spec.SampleRate),
		"-c:a", "libopus",
		"-b:a", spec.OpusBitrate,
		spec.OutputPath,
		"-map", "[stats]",
		"-f", "null", "-",
	)
	return args
}

func filterGraph(spec Spec, micCmdPath string) string {
	var graph []string
	mixed := "[0:a]"
	if spec.Source != "" {
		graph = append(graph,
			fmt.Sprintf("[1:a]asendcmd=filename=%s,volume@micvol=volume=1.0[mic]", micCmdPath),
			"[0:a][mic]amix=inputs=2:duration=longest:dropout_transition=3[mix]",
		)
		mixed = "[mix]"
	}
	graph = append(graph,
		mixed+"asplit=2[rec][meter]",
		"[meter]astats=metadata=1:reset=1,ametadata=mode=print:key=lavfi.astats.Overall.RMS_level:file=-[stats]",
	)
	return strings.Join(graph, ";")
}
