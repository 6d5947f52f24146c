package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects logger output into a buffer and restores the
// defaults when the test ends.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	capture(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off by default")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose on after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off after SetVerbose(false)")
	}
}

func TestLevelsWriteWhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("fetched %d events", 12) }, "[DEBUG] fetched 12 events\n"},
		{"info", func() { Info("sync window %s", "7d") }, "[INFO] sync window 7d\n"},
		{"warn", func() { Warn("upsert failed") }, "[WARN] upsert failed\n"},
		{"section", func() { Section("Calendar Sync") }, "\n=== Calendar Sync ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			SetVerbose(true)

			tt.log()

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSilentWhenNotVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output with verbose off, got %q", buf.String())
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(id int) {
			SetVerbose(true)
			Debug("worker %d", id)
			IsVerbose()
			SetVerbose(false)
			done <- struct{}{}
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	// Passes if the race detector stays quiet.
}
