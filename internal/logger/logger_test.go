package logger

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestGatedLevels(t *testing.T) {
	tests := []struct {
		name   string
		log    func()
		prefix string
	}{
		{"debug", func() { Debug("msg %d", 1) }, "[DEBUG] msg 1"},
		{"info", func() { Info("msg %d", 2) }, "[INFO] msg 2"},
		{"warn", func() { Warn("msg %d", 3) }, "[WARN] msg 3"},
		{"section", func() { Section("Exchange") }, "=== Exchange ==="},
	}

	for _, tt := range tests {
		t.Run(tt.name+" verbose", func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if !strings.Contains(buf.String(), tt.prefix) {
				t.Errorf("expected %q in output, got %q", tt.prefix, buf.String())
			}
		})
		t.Run(tt.name+" quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log()
			if buf.Len() != 0 {
				t.Errorf("expected no output when not verbose, got %q", buf.String())
			}
		})
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("callback failed: %s", "timeout")

	if got := buf.String(); got != "[ERROR] callback failed: timeout\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriter(t *testing.T) {
	buf := capture(t, true)

	n, err := Writer().Write([]byte("[GIN] 200 | GET /healthz\n"))
	if err != nil || n != 25 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := buf.String(); got != "[DEBUG] [GIN] 200 | GET /healthz\n" {
		t.Errorf("unexpected output %q", got)
	}

	quiet := capture(t, false)
	_, _ = Writer().Write([]byte("dropped\n"))
	if quiet.Len() != 0 {
		t.Errorf("expected no output when not verbose, got %q", quiet.String())
	}
}

func TestFields_String(t *testing.T) {
	f := Fields{
		"provider": "jira",
		"state":    "failed",
		"detail":   "invalid_grant: Code expired",
	}

	want := `detail="invalid_grant: Code expired" provider=jira state=failed`
	if got := f.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := (Fields{}).String(); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, true)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("message %d", i)
			Error("message %d", i)
			_ = IsVerbose()
		}(i)
	}
	wg.Wait()
}
