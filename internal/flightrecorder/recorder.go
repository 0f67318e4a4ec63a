// Package flightrecorder captures runtime execution traces around request
// timeouts so that slow requests can be diagnosed after the fact.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"
)

const (
	// defaultMinAge is how far back the in-memory trace window reaches.
	defaultMinAge = 5 * time.Minute

	// defaultMaxBytes bounds the in-memory trace buffer.
	defaultMaxBytes = 64 * 1024 * 1024

	// captureCooldown is the minimum time between written trace files, so a
	// storm of timeouts cannot fill the disk.
	captureCooldown = 30 * time.Minute
)

// Recorder keeps a rolling runtime trace and dumps it to disk on demand.
type Recorder struct {
	logger      *slog.Logger
	recorder    *trace.FlightRecorder
	dir         string
	lastCapture atomic.Int64
}

// New creates a recorder writing trace files into dir, creating it if needed.
func New(logger *slog.Logger, dir string) (*Recorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("traces directory is required")
	}
	if stat, err := os.Stat(dir); err != nil {
		if err = os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create traces directory: %w", err)
		}
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("traces path is not a directory: %s", dir)
	}

	recorder := trace.NewFlightRecorder(trace.FlightRecorderConfig{
		MinAge:   defaultMinAge,
		MaxBytes: defaultMaxBytes,
	})

	return &Recorder{
		logger:   logger,
		recorder: recorder,
		dir:      dir,
	}, nil
}

// Start begins recording.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.dir),
		slog.Duration("min_age", defaultMinAge))
	return nil
}

// Stop ends recording.
func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// CaptureTimeout writes the current trace window to a timestamped file. At
// most one file is written per cooldown period; captures inside the window
// are dropped.
func (r *Recorder) CaptureTimeout(ctx context.Context) {
	now := time.Now().Unix()
	last := r.lastCapture.Load()
	if last > 0 && time.Duration(now-last)*time.Second < captureCooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture during cooldown",
			slog.Time("last_capture", time.Unix(last, 0)))
		return
	}
	if !r.lastCapture.CompareAndSwap(last, now) {
		// Lost the race to a concurrent capture.
		return
	}

	name := fmt.Sprintf("timeout-%s.trace", time.Unix(now, 0).UTC().Format("20060102-150405"))
	path := filepath.Join(r.dir, name)

	file, err := os.Create(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to create trace file",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), slog.Any("error", closeErr))
		}
	}()

	written, err := r.recorder.WriteTo(file)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to write trace",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured timeout trace",
		slog.String("file", path), slog.Int64("bytes", written))
}
