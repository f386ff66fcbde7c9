// Package runlog appends one line of metadata per produced artifact to a
// plain-text log. Lines are never rewritten or removed.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Redacted replaces the credential when password recording is disabled.
const Redacted = "[REDACTED]"

// Option is one active run option, rendered as "Key: Value".
type Option struct {
	Key   string
	Value string
}

// Entry is one run log line.
type Entry struct {
	Time      time.Time
	RunID     string
	Input     string
	Output    string
	Encrypted bool
	Password  string
	Backend   string
	Options   []Option
}

// String renders the entry as a single log line without a trailing newline:
//
//	[2024-02-01 10:00:00] Input: a.xlsx | Output: b.xlsx | Encryption: ENABLED | Password: ... | TopCards: 20
func (e Entry) String() string {
	enc := "DISABLED"
	if e.Encrypted {
		enc = "ENABLED"
	}

	parts := []string{
		fmt.Sprintf("[%s] Input: %s", e.Time.Format("2006-01-02 15:04:05"), e.Input),
		"Output: " + e.Output,
		"Encryption: " + enc,
		"Password: " + e.Password,
	}
	if e.Backend != "" {
		parts = append(parts, "Backend: "+e.Backend)
	}
	for _, o := range e.Options {
		parts = append(parts, o.Key+": "+o.Value)
	}
	if e.RunID != "" {
		parts = append(parts, "Run: "+e.RunID)
	}

	// Values must not break the one-line-per-entry format.
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.Join(parts, " | "))
}

// Writer appends entries to a log file. Each Append opens the file in append
// mode, writes the whole line in one call and closes it, so lines from
// concurrent runs never interleave.
type Writer struct {
	path           string
	recordPassword bool

	mu sync.Mutex
}

// NewWriter creates a writer for path. When recordPassword is false the
// credential of encrypted runs is logged as Redacted.
func NewWriter(path string, recordPassword bool) *Writer {
	return &Writer{path: path, recordPassword: recordPassword}
}

// Path returns the log file path.
func (w *Writer) Path() string { return w.path }

// Append writes e as one line.
func (w *Writer) Append(e Entry) error {
	if !w.recordPassword && e.Password != "" {
		e.Password = Redacted
	}
	line := []byte(e.String() + "\n")

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append run log: %w", err)
	}
	return f.Close()
}
