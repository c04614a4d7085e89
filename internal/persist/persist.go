// Package persist remembers which group had focus and which member each
// group was running, per configuration file.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "sudare"

var (
	// ErrCorrupt marks a session file that exists but cannot be decoded.
	ErrCorrupt = errors.New("corrupt session file")
	// ErrNoCacheDir means neither XDG_CACHE_HOME nor HOME is set.
	ErrNoCacheDir = errors.New("no cache directory")
)

// Record is the persisted session. Groups whose active member is disabled
// are omitted from ActiveProcesses.
type Record struct {
	FocusedGroup    string            `json:"focused_group"`
	ActiveProcesses map[string]string `json:"active_processes"`
}

// Key derives the file key for a configuration path: the hex sha256 of the
// absolute path with symlinks resolved.
func Key(configPath string) (string, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", configPath, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

// CacheDir resolves the base cache directory from the environment lookup.
func CacheDir(getenv func(string) string) (string, error) {
	if dir := getenv("XDG_CACHE_HOME"); dir != "" {
		return dir, nil
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache"), nil
	}
	return "", ErrNoCacheDir
}

type Store struct {
	dir string
}

func NewStore(cacheDir string) *Store {
	return &Store{dir: filepath.Join(cacheDir, appDir)}
}

func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load returns the record saved under key. A missing file is not an error
// and reports found=false.
func (s *Store) Load(key string) (rec Record, found bool, err error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Path(key), err)
	}
	if rec.ActiveProcesses == nil {
		rec.ActiveProcesses = map[string]string{}
	}
	return rec, true, nil
}

func (s *Store) Save(key string, rec Record) error {
	if rec.ActiveProcesses == nil {
		rec.ActiveProcesses = map[string]string{}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(key), data, 0o644)
}
