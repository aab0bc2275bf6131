package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FrankDatema/MindHop/internal/logx"
)

// FileStore persists values as one JSON object. Every Flush rewrites the
// whole file through a temp file and rename, so a reader sees either the
// previous blob or the new one.
type FileStore struct {
	values
	path string
	log  *logx.Logger
}

// NewFileStore opens dataDir/prefs.json. A missing file is empty; a corrupt
// file is logged and treated as empty.
func NewFileStore(dataDir string, logger *logx.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &FileStore{
		values: values{m: map[string]string{}},
		path:   filepath.Join(dataDir, "prefs.json"),
		log:    logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded map[string]string
	if err := json.Unmarshal(b, &loaded); err != nil {
		s.log.Warn("prefs_corrupt", logx.Fields{"path": s.path, "error": err})
		return nil
	}
	if loaded != nil {
		s.m = loaded
	}
	return nil
}

func (s *FileStore) Flush() error {
	b, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}
