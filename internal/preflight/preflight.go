// Package preflight runs the checks a recording session depends on before
// anything is spawned: tool availability, output-directory access, and free
// disk space. Failing here yields a clear message instead of a mid-session
// pipeline error.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"rcrd/internal/config"
	"rcrd/internal/deps"
	"rcrd/internal/services"
)

// MinFreeBytes is the least free space accepted in the output directory.
// Opus at the default bitrate runs under 1 MiB/minute, so this covers hours
// of recording plus headroom for the marker sidecar and logs.
const MinFreeBytes uint64 = 256 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the given config. The caller decides
// whether failures are fatal; the record command classifies them with
// Classify and aborts on any failure.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	// An empty output directory means the working directory.
	outputDir := cfg.Output.Directory
	if outputDir == "" {
		outputDir = "."
	}
	results := []Result{
		CheckDirectoryAccess("Output directory", outputDir),
		CheckFreeSpace("Output free space", outputDir, MinFreeBytes),
	}
	for _, status := range deps.CheckBinaries(deps.ForConfig(cfg)) {
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available,
			Detail: statusDetail(status),
		})
	}
	results = append(results, encoderResult(deps.CheckOpusEncoder(ctx, cfg.Tools.FFmpegBinary)))
	return results
}

// Classify maps failed checks onto the session error taxonomy, so startup
// failures exit with the same codes the running session would report: a
// missing or broken introspection tool is a resolution error, a missing
// encoder a spawn error, anything else a configuration error. Resolution
// outranks spawn because endpoint resolution runs before the pipeline is
// spawned. Returns nil when no checks failed.
func Classify(failed []Result) error {
	if len(failed) == 0 {
		return nil
	}

	marker := services.ErrConfiguration
	for _, res := range failed {
		switch res.Name {
		case deps.RequirementPWDump:
			marker = services.ErrResolution
		case deps.RequirementFFmpeg, deps.RequirementOpus:
			if !errors.Is(marker, services.ErrResolution) {
				marker = services.ErrSpawn
			}
		}
	}

	details := make([]string, 0, len(failed))
	for _, res := range failed {
		details = append(details, fmt.Sprintf("%s: %s", res.Name, res.Detail))
	}
	return services.Wrap(marker, "preflight", "", strings.Join(details, "; "), nil)
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// CheckDirectoryAccess verifies that the directory exists and is writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least min bytes
// available to unprivileged writes.
func CheckFreeSpace(name, path string, min uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < min {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%s (%d MiB free, need %d MiB)", path, free>>20, min>>20),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, free>>20)}
}

func statusDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	return status.Detail
}

func encoderResult(status deps.Status) Result {
	return Result{Name: status.Name, Passed: status.Available, Detail: statusDetail(status)}
}
