// Package audit appends a JSON Lines record for every executed statement,
// with credentials scrubbed out of the recorded DSN.
package audit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Entry is a single audit record. The JSON tags are the file format.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	Query        string    `json:"query"`
	Engine       string    `json:"engine"`
	DatabaseName string    `json:"database_name"`
	DurationMS   int64     `json:"duration_ms"`
	RowCount     int64     `json:"row_count"`
	IsError      bool      `json:"is_error"`
	DSN          string    `json:"dsn"`
}

// Logger appends entries to a single file, rotating it to "<path>.1" before
// a write would push it past the size limit. All methods are safe on a nil
// receiver so callers can hold an optional logger without branching.
type Logger struct {
	mu       sync.Mutex
	f        *os.File
	path     string
	size     int64
	maxBytes int64
}

// New opens (or creates) the audit file at path. Parent directories are
// created with 0700 and the file with 0600. A maxSizeMB of zero disables
// rotation.
func New(path string, maxSizeMB int) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	l := &Logger{f: f, path: path}
	if info, err := f.Stat(); err == nil {
		l.size = info.Size()
	}
	if maxSizeMB > 0 {
		l.maxBytes = int64(maxSizeMB) << 20
	}
	return l, nil
}

// Log appends e as one JSON line. Failures are swallowed; auditing must
// never take the shell down.
func (l *Logger) Log(e Entry) {
	if l == nil {
		return
	}

	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxBytes > 0 && l.size+int64(len(line)) > l.maxBytes {
		l.rotate()
	}
	if n, err := l.f.Write(line); err == nil {
		l.size += int64(n)
	}
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// rotate moves the current file aside and starts a fresh one. Called with
// the mutex held.
func (l *Logger) rotate() {
	l.f.Close()
	os.Rename(l.path, l.path+".1")

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return
	}
	l.f = f
	l.size = 0
}

var (
	tcpCreds   = regexp.MustCompile(`[^@]+@tcp\(`)
	kvPassword = regexp.MustCompile(`password=\S+`)
)

// SanitizeDSN returns dsn with any embedded credentials replaced by "***".
// It understands URL-style DSNs, the go-sql-driver tcp() form and
// keyword=value connection strings; anything else passes through unchanged.
func SanitizeDSN(dsn string) string {
	lower := strings.ToLower(dsn)
	for _, scheme := range []string{"postgres://", "postgresql://", "mysql://", "duckdb://"} {
		if !strings.HasPrefix(lower, scheme) {
			continue
		}
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		if u.User != nil {
			u.User = url.User("***")
		}
		return u.String()
	}

	dsn = tcpCreds.ReplaceAllString(dsn, "***@tcp(")
	return kvPassword.ReplaceAllString(dsn, "password=***")
}
