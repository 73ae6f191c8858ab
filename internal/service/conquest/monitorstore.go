package conquest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

// MonitorStore persists the monitor configuration and watermark as a JSON
// file. Both the poll loop and configuration commands write it, so every save
// goes through whole-file atomic replace (write temp, then rename) — a reader
// must never observe a half-written file.
type MonitorStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewMonitorStore(path string, logger *zap.Logger) *MonitorStore {
	return &MonitorStore{path: path, logger: logger}
}

// Load reads the persisted config. A missing file means the feature was never
// activated: (nil, nil), not an error.
func (s *MonitorStore) Load() (*domain.MonitorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *MonitorStore) load() (*domain.MonitorConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStorageError("failed to read monitor config", "read", s.path, err)
	}

	var cfg domain.MonitorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewStorageError("monitor config is corrupt", "unmarshal", s.path, err)
	}
	return &cfg, nil
}

// Save writes the config atomically.
func (s *MonitorStore) Save(cfg *domain.MonitorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

func (s *MonitorStore) save(cfg *domain.MonitorConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to marshal monitor config", "marshal", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStorageError("failed to create config dir", "mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".monitor-*.json")
	if err != nil {
		return errors.NewStorageError("failed to create temp config file", "create", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorageError("failed to write temp config file", "write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError("failed to close temp config file", "close", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError("failed to replace monitor config", "rename", s.path, err)
	}

	return nil
}

// Update applies fn to the current config (a fresh default when none exists)
// and saves the result, all under one lock, so concurrent writers cannot
// interleave read-modify-write cycles.
func (s *MonitorStore) Update(fn func(cfg *domain.MonitorConfig)) (*domain.MonitorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &domain.MonitorConfig{
			Mode:   domain.PollNormal,
			Filter: domain.TribeFilter{Mode: domain.FilterAll},
		}
	}

	fn(cfg)

	if err := s.save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
