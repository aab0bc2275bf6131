package prefs

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Store is a flat string key-value store for settings and persisted blobs.
// Writes may be buffered until Flush.
type Store interface {
	String(key string) (string, bool, error)
	SetString(key, value string) error
	Int(key string, def int) (int, error)
	SetInt(key string, value int) error
	Delete(key string) error
	Keys() ([]string, error)
	Flush() error
}

// DefaultMaxDays is used when no per-chore setting was saved.
const DefaultMaxDays = 1

// MaxDaysKey is the settings key holding a chore's reset interval.
func MaxDaysKey(choreName string) string { return choreName + "MaxDays" }

// MaxDays reads a chore's configured reset interval, defaulting to 1.
func MaxDays(s Store, choreName string) (int, error) {
	return s.Int(MaxDaysKey(choreName), DefaultMaxDays)
}

// LookupInt reports whether key holds an integer; unparsable values count as absent.
func LookupInt(s Store, key string) (int, bool, error) {
	raw, ok, err := s.String(key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// values is the map shared by the memory and file backends.
type values struct {
	mu sync.RWMutex
	m  map[string]string
}

func (v *values) String(key string) (string, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.m[key]
	return s, ok, nil
}

func (v *values) SetString(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m[key] = value
	return nil
}

func (v *values) Int(key string, def int) (int, error) {
	s, ok, _ := v.String(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("prefs key %q: %w", key, err)
	}
	return n, nil
}

func (v *values) SetInt(key string, value int) error {
	return v.SetString(key, strconv.Itoa(value))
}

func (v *values) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.m, key)
	return nil
}

func (v *values) Keys() ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (v *values) snapshot() map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]string, len(v.m))
	for k, s := range v.m {
		out[k] = s
	}
	return out
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	values
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: values{m: map[string]string{}}}
}

func (s *MemoryStore) Flush() error { return nil }
