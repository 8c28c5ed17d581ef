package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"vscoscraper/pkg/logger"
)

// RunState records the durable outcome of a scraping run for one username.
// Completed maps media IDs to saved filenames; Failed maps media IDs to the
// last error message seen for them. A failed ID is removed from Failed once
// a later run downloads it.
type RunState struct {
	Username       string            `json:"username"`
	Completed      map[string]string `json:"completed"`
	Failed         map[string]string `json:"failed"`
	TotalQueued    int               `json:"total_queued"`
	TotalCompleted int               `json:"total_completed"`
	StartedAt      time.Time         `json:"started_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int               `json:"version"`
}

// IsCompleted checks if a media item was already downloaded in this or a
// previous run.
func (st *RunState) IsCompleted(id string) bool {
	_, exists := st.Completed[id]
	return exists
}

// Manager handles checkpoint persistence for one username
type Manager struct {
	statePath string
	logger    logger.Logger
}

// NewManager creates a new checkpoint manager
func NewManager(username string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	statePath := filepath.Join(checkpointsDir, fmt.Sprintf("%s.checkpoint.json", username))

	return &Manager{
		statePath: statePath,
		logger:    logger.GetLogger(),
	}, nil
}

// Create starts a fresh run state. Any existing checkpoint for the username
// is backed up first so an accidental fresh start does not destroy history.
func (m *Manager) Create(username string) (*RunState, error) {
	if m.Exists() {
		if err := m.backupExisting(); err != nil {
			return nil, err
		}
	}

	state := &RunState{
		Username:  username,
		Completed: make(map[string]string),
		Failed:    make(map[string]string),
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   1,
	}

	if err := m.Save(state); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"username": username,
		"path":     m.statePath,
	})

	return state, nil
}

// Load loads an existing run state. A missing checkpoint is not an error;
// it returns nil, nil.
func (m *Manager) Load() (*RunState, error) {
	file, err := os.Open(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var state RunState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if state.Completed == nil {
		state.Completed = make(map[string]string)
	}
	if state.Failed == nil {
		state.Failed = make(map[string]string)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"username":        state.Username,
		"total_completed": state.TotalCompleted,
		"failed":          len(state.Failed),
		"updated_at":      state.UpdatedAt,
	})

	return &state, nil
}

// Save writes the run state to disk atomically
func (m *Manager) Save(state *RunState) error {
	state.UpdatedAt = time.Now()

	tempPath := m.statePath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	// Atomically replace the old checkpoint file
	if err := os.Rename(tempPath, m.statePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"username":        state.Username,
		"total_completed": state.TotalCompleted,
	})

	return nil
}

// RecordSuccess marks a media item as downloaded and persists the state.
// A previously recorded failure for the same item is cleared.
func (m *Manager) RecordSuccess(state *RunState, id, filename string) error {
	state.Completed[id] = filename
	delete(state.Failed, id)
	state.TotalCompleted = len(state.Completed)
	return m.Save(state)
}

// RecordFailure remembers the last error for a media item and persists the
// state. Items that already completed are left untouched.
func (m *Manager) RecordFailure(state *RunState, id, message string) error {
	if state.IsCompleted(id) {
		return nil
	}
	state.Failed[id] = message
	return m.Save(state)
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.statePath)
	return err == nil
}

// backupExisting copies the current checkpoint aside before it is replaced
func (m *Manager) backupExisting() error {
	backupPath := m.statePath + ".backup"

	src, err := os.Open(m.statePath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy checkpoint to backup: %w", err)
	}

	m.logger.Debug("checkpoint backed up")
	return nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "vscoscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "vscoscraper")
		}
	case "darwin":
		// macOS: ~/Library/Application Support
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "vscoscraper")
	case "windows":
		// Windows: %APPDATA%
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "vscoscraper")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
