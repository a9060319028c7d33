package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func newBufferedLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(WrapByErrFmtHandler(handler)), buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	return entry
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	logger, buf := newBufferedLogger()

	err := errors.WithStack(errors.New("energy evaluation failed"))
	logger.Error("sweep aborted", ErrAttr(err))

	entry := lastEntry(t, buf)
	if entry[ErrAttrKey] == nil {
		t.Fatalf("entry is missing the %q attribute: %v", ErrAttrKey, entry)
	}
	trace, ok := entry[StacktraceAttrKey].(string)
	if !ok || trace == "" {
		t.Errorf("entry is missing the %q attribute for a stack-carrying error", StacktraceAttrKey)
	}
}

func TestErrFmtHandlerPlainError(t *testing.T) {
	logger, buf := newBufferedLogger()

	// A bare error has no safe details; no stacktrace attribute is emitted.
	logger.Error("sweep aborted", ErrAttr(fmt.Errorf("plain failure")))

	entry := lastEntry(t, buf)
	if _, exists := entry[StacktraceAttrKey]; exists {
		t.Errorf("unexpected %q attribute for a plain error: %v", StacktraceAttrKey, entry)
	}
}

func TestErrFmtHandlerPreservesOtherAttrs(t *testing.T) {
	logger, buf := newBufferedLogger()

	logger.Info("landscape computed",
		OperationKey, "compute_landscape",
		ConfigurationsKey, 9,
	)

	entry := lastEntry(t, buf)
	if entry[OperationKey] != "compute_landscape" {
		t.Errorf("attribute %q = %v, want compute_landscape", OperationKey, entry[OperationKey])
	}
	if entry[ConfigurationsKey] != 9.0 { // JSON numbers decode as float64
		t.Errorf("attribute %q = %v, want 9", ConfigurationsKey, entry[ConfigurationsKey])
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.in); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
