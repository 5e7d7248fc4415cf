package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures structured log output in memory so tests can assert on
// the JSON entries that syncers and commands emit.
type TestLogger struct {
	*zerolog.Logger
	buf *bytes.Buffer
}

// NewTestLogger creates a trace-level logger writing to an in-memory buffer.
// The global level is widened for the duration of the test so debug entries
// from sync adapters are captured regardless of the environment.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	buf := &bytes.Buffer{}
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
	})

	logger := zerolog.New(buf).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()

	return &TestLogger{Logger: &logger, buf: buf}
}

// Context returns a context carrying this logger, the form sync adapters
// receive it in.
func (tl *TestLogger) Context(ctx context.Context) context.Context {
	return WithLogger(ctx, tl.Logger)
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	return tl.buf.String()
}

// Entries decodes each captured line as a JSON object, failing the test on a
// malformed line.
func (tl *TestLogger) Entries(t testing.TB) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(tl.Output()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not a JSON object: %s", line)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Entry returns the single entry whose message field equals message, failing
// the test when it is absent or logged more than once.
func (tl *TestLogger) Entry(t testing.TB, message string) map[string]any {
	t.Helper()

	var found map[string]any
	for _, entry := range tl.Entries(t) {
		if entry["message"] != message {
			continue
		}
		if found != nil {
			t.Fatalf("message %q logged more than once\noutput:\n%s", message, tl.Output())
		}
		found = entry
	}
	if found == nil {
		t.Fatalf("message %q not logged\noutput:\n%s", message, tl.Output())
	}
	return found
}

// Contains reports whether the captured output contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// Count returns the number of captured entries.
func (tl *TestLogger) Count() int {
	output := strings.TrimSpace(tl.Output())
	if output == "" {
		return 0
	}
	return len(strings.Split(output, "\n"))
}

// Clear discards the captured output.
func (tl *TestLogger) Clear() {
	tl.buf.Reset()
}
