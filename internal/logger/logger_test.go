package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetLevel(LevelWarn)
	SetOutput(os.Stderr)
}

func TestConfigure(t *testing.T) {
	defer reset()
	tests := []struct {
		verbose, debug bool
		want           Level
	}{
		{false, false, LevelWarn},
		{true, false, LevelInfo},
		{false, true, LevelDebug},
		{true, true, LevelDebug},
	}
	for _, tt := range tests {
		Configure(tt.verbose, tt.debug)
		if !Enabled(tt.want) {
			t.Errorf("Configure(%v, %v): level %d not enabled", tt.verbose, tt.debug, tt.want)
		}
		if tt.want < LevelDebug && Enabled(tt.want+1) {
			t.Errorf("Configure(%v, %v): level %d unexpectedly enabled", tt.verbose, tt.debug, tt.want+1)
		}
	}
}

func TestDefaultLevelShowsOnlyWarnings(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)

	Debug("hidden %d", 1)
	Info("hidden %d", 2)
	Warn("shown %s", "x")

	if got := buf.String(); got != "[WARN] shown x\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebugLevelShowsAll(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)

	Debug("d")
	Info("i")
	Section("Fit")

	want := "[DEBUG] d\n[INFO] i\n\n=== Fit ===\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
