package flightrecorder_test

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mtoivane/valmento/internal/flightrecorder"
)

func newTestRecorder(t *testing.T) (*flightrecorder.Recorder, string) {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	recorder, err := flightrecorder.New(logger, dir)
	if err != nil {
		t.Fatalf("Failed to create recorder: %v", err)
	}
	return recorder, dir
}

func Test_Recorder_StartStop(t *testing.T) {
	recorder, _ := newTestRecorder(t)

	ctx := t.Context()
	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("Failed to start recorder: %v", err)
	}
	recorder.Stop(ctx)
}

func Test_Recorder_RequiresDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if _, err := flightrecorder.New(logger, ""); err == nil {
		t.Error("Expected an error for an empty traces directory")
	}
}

func Test_Recorder_CaptureWritesTraceFile(t *testing.T) {
	recorder, dir := newTestRecorder(t)

	ctx := t.Context()
	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("Failed to start recorder: %v", err)
	}
	defer recorder.Stop(ctx)

	recorder.CaptureTimeout(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read trace directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected one trace file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "timeout-") || !strings.HasSuffix(name, ".trace") {
		t.Errorf("Unexpected trace filename %q", name)
	}
}

func Test_Recorder_CooldownDropsRapidCaptures(t *testing.T) {
	recorder, dir := newTestRecorder(t)

	ctx := t.Context()
	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("Failed to start recorder: %v", err)
	}
	defer recorder.Stop(ctx)

	recorder.CaptureTimeout(ctx)
	recorder.CaptureTimeout(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read trace directory: %v", err)
	}
	if len(entries) > 1 {
		t.Errorf("Cooldown let %d captures through, want 1", len(entries))
	}
}
