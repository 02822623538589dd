package fixture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Loader reads the reference data file used as a fallback when the store is
// empty and as the input of seeding.
type Loader struct {
	filePath string

	mu     sync.RWMutex
	cached *Dataset
	stamp  fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) same(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// NewLoader creates a new fixture loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the configured fixture path.
func (l *Loader) Path() string {
	return l.filePath
}

// Load returns the parsed fixture. A missing file is not an error: it
// yields (nil, nil), meaning no fallback data is available.
//
// The parsed Dataset is cached until the file's size or modification time
// changes.
func (l *Loader) Load() (*Dataset, error) {
	info, err := os.Stat(l.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		l.forget()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixture file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fixture path %s is a directory", l.filePath)
	}

	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}

	l.mu.RLock()
	if l.cached != nil && l.stamp.same(stamp) {
		ds := l.cached
		l.mu.RUnlock()
		return ds, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil && l.stamp.same(stamp) {
		return l.cached, nil
	}

	data, err := os.ReadFile(l.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		l.cached = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	ds, err := Parse(data, filepath.Ext(l.filePath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.filePath, err)
	}

	l.cached, l.stamp = ds, stamp
	return ds, nil
}

func (l *Loader) forget() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}
