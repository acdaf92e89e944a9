// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// JoinToken replaces whitespace runs in names derived from user-entered
// metadata. The same token is used at intake and archival so both sides of
// the pipeline resolve identical paths.
const JoinToken = "_"

var whitespaceRun = regexp.MustCompile(`\s+`)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] appending to the file at path,
// creating parent directories as needed.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// NormalizeName collapses whitespace runs in a metadata-derived name to a
// single [JoinToken] and trims surrounding whitespace.
func NormalizeName(name string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(name), JoinToken)
}

// UploadKey derives the deterministic file-naming key for one upload from
// its broadcast date, DJ name, and set title: {date}_{dj}_{title}.
func UploadKey(date, djName, title string) string {
	parts := []string{
		NormalizeName(date),
		NormalizeName(djName),
		NormalizeName(title),
	}
	return strings.Join(parts, JoinToken)
}

// ArchiveDirName derives the shared archive directory name for a DJ's
// uploads on a given date: {date}_{dj}. The directory may be shared across
// uploads from the same DJ on the same date.
func ArchiveDirName(date, djName string) string {
	return NormalizeName(date) + JoinToken + NormalizeName(djName)
}
