package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLog keeps the conversation in memory and mirrors it to a single JSON
// file after every append. The file is always rewritten in full.
type FileLog struct {
	path    string
	mu      sync.Mutex
	entries []Entry
}

func NewFileLog(path string) (*FileLog, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure log dir: %w", err)
	}
	return &FileLog{path: path, entries: []Entry{}}, nil
}

func (l *FileLog) Path() string { return l.path }

func (l *FileLog) Append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return l.saveUnlocked()
}

func (l *FileLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// saveUnlocked writes to a sibling temp file and renames it over the target,
// so readers see either the previous or the new content.
func (l *FileLog) saveUnlocked() error {
	data, err := Encode(l.entries)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Encode renders entries as a 2-space indented JSON array with non-ASCII and
// HTML characters kept literal and no trailing newline.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ReadFile loads the entries persisted at path. A missing file is reported
// with ok=false and no error.
func ReadFile(path string) (entries []Entry, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open read: %w", err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, true, nil
}
