package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/JanConnect/JanConnect-sub001/internal/metrics"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps one JSON file per user in a directory
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store rooted there
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var (
	_ Store  = (*FileStore)(nil)
	_ Pinger = (*FileStore)(nil)
)

// Ping checks that the state directory still exists
func (f *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", f.dir)
	}
	return nil
}

func (f *FileStore) path(userID string) string {
	name := unsafeFileChars.ReplaceAllString(userID, "_")
	if name == "" {
		name = "anonymous"
	}
	return filepath.Join(f.dir, name+".json")
}

// Load reads the user's state file. A missing file yields an empty state.
func (f *FileStore) Load(ctx context.Context, userID string) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer observe("file", "load", time.Now())

	data, err := os.ReadFile(f.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewState(), nil
		}
		countOp("file", "load", err)
		return nil, fmt.Errorf("failed to read interaction state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		countOp("file", "load", err)
		return nil, fmt.Errorf("failed to decode interaction state: %w", err)
	}
	countOp("file", "load", nil)
	return state.normalize(), nil
}

// Save writes the state to a temp file and renames it over the target
func (f *FileStore) Save(ctx context.Context, userID string, state *State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer observe("file", "save", time.Now())

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		countOp("file", "save", err)
		return fmt.Errorf("failed to encode interaction state: %w", err)
	}

	target := f.path(userID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		countOp("file", "save", err)
		return fmt.Errorf("failed to write interaction state: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		countOp("file", "save", err)
		return fmt.Errorf("failed to replace interaction state: %w", err)
	}
	countOp("file", "save", nil)
	return nil
}

// Reset removes the user's state file
func (f *FileStore) Reset(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(userID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		countOp("file", "reset", err)
		return fmt.Errorf("failed to remove interaction state: %w", err)
	}
	countOp("file", "reset", nil)
	return nil
}

func observe(driver, op string, start time.Time) {
	metrics.Get().StoreOperationDuration.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}

func countOp(driver, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.Get().StoreOperationsTotal.WithLabelValues(driver, op, status).Inc()
}
