// Package state persists small pieces of UI state in a JSON key/value file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// State is the on-disk key/value record. Keys are namespaced by their
// owner (for example "reagentry.theme.preference") so unrelated values can
// share one file.
type State struct {
	values map[string]string
	path   string
}

// New creates an empty state bound to path.
func New(path string) *State {
	return &State{
		path:   expandPath(path),
		values: map[string]string{},
	}
}

// Load reads the state file at path. A missing or empty file yields an
// empty state.
func Load(path string) (*State, error) {
	s := New(path)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}

	return s, nil
}

// Save writes the state atomically: the data goes to a temporary file in
// the same directory which then replaces the target.
func (s *State) Save() error {
	if s.path == "" {
		return fmt.Errorf("state path not set")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Get returns the value stored under key.
func (s *State) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *State) Set(key, value string) {
	s.values[key] = value
}

// Delete removes key.
func (s *State) Delete(key string) {
	delete(s.values, key)
}

// Keys returns the stored keys in sorted order.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the file path.
func (s *State) Path() string {
	return s.path
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
