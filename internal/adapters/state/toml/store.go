// Package toml persists the client's device identity and last session id as
// a small TOML state file. Writes go through an atomic temp-file replace so
// a crash never leaves a torn file behind.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/pocketcode/pocket-cli/internal/ports"
)

const (
	configName      = "config"
	configType      = "toml"
	statePathKey    = "state.path"
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	configDir       = ".pocket"
	stateFileName   = "state.toml"
	tempFilePattern = ".state-*.toml.tmp"
)

type Store struct {
	statePath string
	mu        *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.IdentityStore = (*Store)(nil)

func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, configDir, stateFileName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault(statePathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	statePath := cfg.GetString(statePathKey)
	if statePath == "" {
		return nil, errors.New("state path is empty")
	}
	statePath, err = normalizeStatePath(statePath)
	if err != nil {
		return nil, err
	}

	return &Store{statePath: statePath, mu: lockForPath(statePath)}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateKey(key); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return "", err
	}

	value, ok := file.Values[key]
	if !ok || value == "" {
		return "", fmt.Errorf("state key %q: %w", key, ports.ErrKeyNotFound)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()
	file.Values[key] = value

	return s.writeSchema(file)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}
	if _, ok := file.Values[key]; !ok {
		return nil
	}
	delete(file.Values, key)

	return s.writeSchema(file)
}

func (s *Store) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read state file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode state file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (s *Store) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.statePath), stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.statePath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, s.statePath); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(s.statePath, stateFileMode); err != nil {
		return fmt.Errorf("chmod state file: %w", err)
	}

	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("state key is empty")
	}
	return nil
}

func normalizeStatePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve state path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
