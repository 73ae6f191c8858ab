package conquest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
)

func newTestStore(t *testing.T) *MonitorStore {
	t.Helper()
	return NewMonitorStore(filepath.Join(t.TempDir(), "monitor.json"), zap.NewNop())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := &domain.MonitorConfig{
		Enabled:         true,
		HomeTribeID:     7,
		HomeTribeTag:    "CDC",
		GainsChannelID:  "123",
		LossesChannelID: "456",
		Mode:            domain.PollFast,
		Filter:          domain.TribeFilter{Mode: domain.FilterSpecific, TribeName: "Enemigos"},
		Watermark:       1700000000,
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestUpdateCreatesDefaultConfig(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Update(func(cfg *domain.MonitorConfig) {
		cfg.Enabled = true
	})
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, domain.PollNormal, cfg.Mode)
	assert.Equal(t, domain.FilterAll, cfg.Filter.Mode)
}

func TestUpdatePersistsMutation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(func(cfg *domain.MonitorConfig) {
		cfg.Watermark = 42
	})
	require.NoError(t, err)

	_, err = store.Update(func(cfg *domain.MonitorConfig) {
		assert.Equal(t, int64(42), cfg.Watermark)
		cfg.Watermark = 43
	})
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(43), loaded.Watermark)
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewMonitorStore(path, zap.NewNop())
	_, err := store.Load()
	assert.Error(t, err)
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewMonitorStore(filepath.Join(dir, "monitor.json"), zap.NewNop())

	require.NoError(t, store.Save(&domain.MonitorConfig{Mode: domain.PollNormal}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "monitor.json", entries[0].Name())
}
