package scanner

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"media-indexer/internal/logging"
)

// errorEntry is one line of the JSONL error sink.
type errorEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
	Time  string `json:"time"`
}

// errorLog appends per-file failure records to a JSONL file. A nil *errorLog
// is valid and drops every record.
type errorLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

func newErrorLog(path string) (*errorLog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &errorLog{f: f, enc: json.NewEncoder(f)}, nil
}

func (l *errorLog) log(path, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.enc.Encode(errorEntry{
		Path:  path,
		Error: message,
		Time:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logging.Warn("Cannot write error log entry for %s: %v", path, err)
	}
}

func (l *errorLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
