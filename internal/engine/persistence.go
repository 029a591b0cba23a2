package engine

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const sessionFile = "session.json"

// Persistence handles the disk I/O for the MemStore.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // serializes writes to the session file
}

// NewPersistence initializes a persistence handler, creating dir if needed.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// Path returns the session file location.
func (p *Persistence) Path() string {
	return filepath.Join(p.DataDir, sessionFile)
}

// Save writes the session entries atomically: a temp file is written and then
// renamed over the old one, so a crash leaves either the old or the new file.
func (p *Persistence) Save(data map[string]Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tempPath := p.Path() + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, p.Path())
}

// Load reads the session file. A missing file is an empty session.
func (p *Persistence) Load() (map[string]Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(p.Path())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	data := map[string]Entry{}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	return data, nil
}
