package prefs

import (
	"fmt"
	"strings"

	"github.com/FrankDatema/MindHop/internal/logx"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open builds the Store selected by driver. The returned close func is never nil.
func Open(driver, dataDir, sqlitePath string, logger *logx.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFile:
		s, err := NewFileStore(dataDir, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case DriverSQLite:
		s, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case DriverMemory:
		return NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", driver)
	}
}
