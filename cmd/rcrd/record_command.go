package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"rcrd/internal/config"
	"rcrd/internal/ffmpeg"
	"rcrd/internal/history"
	"rcrd/internal/hotplug"
	"rcrd/internal/logging"
	"rcrd/internal/notifications"
	"rcrd/internal/output"
	"rcrd/internal/pipewire"
	"rcrd/internal/preflight"
	"rcrd/internal/presenter"
	"rcrd/internal/session"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag   string
		durationFlag time.Duration
		noMicFlag    bool
		sinkFlag     string
		sourceFlag   string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the current call until stopped",
		Long: "Captures the default sink's monitor (what you hear) mixed with the\n" +
			"default source (your mic) into a single Opus file. Interactive keys:\n" +
			"q/Esc/Ctrl-C stop, m toggles the mic, b drops a marker.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runRecord(cmd.Context(), cfg, recordFlags{
				output:   outputFlag,
				duration: durationFlag,
				noMic:    noMicFlag,
				sink:     sinkFlag,
				source:   sourceFlag,
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (default: generated name in the output directory)")
	cmd.Flags().DurationVarP(&durationFlag, "duration", "d", 0, "Stop automatically after this duration (e.g. 90m)")
	cmd.Flags().BoolVar(&noMicFlag, "no-mic", false, "Capture only the sink monitor, without the microphone")
	cmd.Flags().StringVar(&sinkFlag, "sink", "", "Sink node name to monitor (default: server default sink)")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Source node name to capture (default: server default source)")
	return cmd
}

type recordFlags struct {
	output   string
	duration time.Duration
	noMic    bool
	sink     string
	source   string
}

func runRecord(cmdCtx context.Context, cfg *config.Config, flags recordFlags) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewSessionLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Dir)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lockPath, err := cfg.LockPath()
	if err != nil {
		return fmt.Errorf("resolve lock path: %w", err)
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another rcrd session is already running (lock: %s)", lockPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := preflight.Classify(preflight.Failed(preflight.RunAll(signalCtx, cfg))); err != nil {
		return err
	}

	lister := pipewire.NewCommandLister(cfg.Tools.PWDumpBinary)
	endpoints, err := pipewire.Resolve(signalCtx, lister, pipewire.ResolveOptions{
		Sink:       flags.sink,
		Source:     flags.source,
		IncludeMic: !flags.noMic,
	})
	if err != nil {
		return err
	}

	outputPath, err := resolveOutputPath(cfg, flags.output)
	if err != nil {
		return err
	}

	view := presenter.New(os.Stdout)
	keyboard := presenter.NewKeyboard(os.Stdin)
	keyboardCtx, stopKeyboard := context.WithCancel(signalCtx)
	defer stopKeyboard()
	go func() {
		_ = keyboard.Run(keyboardCtx)
	}()
	defer keyboard.Restore()

	var warnings <-chan string
	if cfg.Monitor.HotplugWarnings {
		monitor := hotplug.NewMonitor(logger)
		if err := monitor.Start(signalCtx); err == nil {
			warnings = monitor.Warnings()
			defer monitor.Stop()
		}
	}

	sess := session.New(session.Options{
		Config:     cfg,
		Logger:     logger,
		Endpoints:  endpoints,
		OutputPath: outputPath,
		Duration:   flags.duration,
		Commands:   keyboard.Commands(),
		Warnings:   warnings,
		Render:     view.Render,
	})

	client := ffmpeg.NewClient(cfg.Tools.FFmpegBinary, logger)
	started := time.Now()
	result := sess.Run(signalCtx, session.NewStarter(client))
	finished := time.Now()

	keyboard.Restore()
	recordHistory(cfg, logger, result, started, finished)
	notifyOutcome(cfg, result)
	printSummary(result)

	return result.Err
}

func resolveOutputPath(cfg *config.Config, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		return output.DefaultPath(cfg.Output.Directory, cfg.Output.FilePrefix, time.Now()), nil
	}
	expanded, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	return expanded, nil
}

// recordHistory appends the finished session to the ledger. Failures here
// are logged and swallowed; the recording on disk is the source of truth.
func recordHistory(cfg *config.Config, logger *slog.Logger, result session.Result, started, finished time.Time) {
	if !cfg.History.Enabled || cfg.History.Path == "" {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("open history store", logging.Error(err))
		return
	}
	defer store.Close()

	var size int64
	if info, statErr := os.Stat(result.OutputPath); statErr == nil {
		size = info.Size()
	}
	status := "done"
	errorText := ""
	if result.Err != nil {
		status = "failed"
		errorText = result.Err.Error()
	}

	entry := history.Entry{
		ID:          result.SessionID,
		OutputPath:  result.OutputPath,
		StartedAt:   started,
		FinishedAt:  finished,
		Duration:    result.Elapsed,
		Status:      status,
		ErrorText:   errorText,
		MarkerCount: len(result.Markers),
		SizeBytes:   size,
	}
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Record(recordCtx, entry); err != nil {
		logger.Warn("record session history", logging.Error(err))
	}
}

func notifyOutcome(cfg *config.Config, result session.Result) {
	svc := notifications.NewService(cfg)
	notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if result.Err != nil {
		_ = svc.NotifySessionFailed(notifyCtx, result.Err, result.OutputPath)
		return
	}
	_ = svc.NotifySessionCompleted(notifyCtx, result.OutputPath, result.Elapsed, len(result.Markers))
}

func printSummary(result session.Result) {
	out := os.Stdout
	switch {
	case result.Err != nil:
		fmt.Fprintf(out, "\nRecording failed: %v\n", result.Err)
		fmt.Fprintf(out, "Partial output kept at %s\n", result.OutputPath)
	default:
		fmt.Fprintf(out, "\nRecording saved to %s (%s)\n", result.OutputPath, result.Elapsed.Round(time.Second))
		if len(result.Markers) > 0 {
			fmt.Fprintf(out, "%d marker(s) saved to %s\n", len(result.Markers), output.SidecarPath(result.OutputPath))
		}
	}
}
