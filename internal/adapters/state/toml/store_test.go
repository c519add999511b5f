package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketcode/pocket-cli/internal/ports"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	statePath := filepath.Join(dir, "state.toml")
	cfg := viper.New()
	cfg.Set("state.path", statePath)

	store, err := NewStore(cfg)
	require.NoError(t, err)
	return store, statePath
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.KeyDeviceID, "device-123"))
	require.NoError(t, store.Put(ctx, ports.KeySessionID, "sess-456"))

	deviceID, err := store.Get(ctx, ports.KeyDeviceID)
	require.NoError(t, err)
	assert.Equal(t, "device-123", deviceID)

	sessionID, err := store.Get(ctx, ports.KeySessionID)
	require.NoError(t, err)
	assert.Equal(t, "sess-456", sessionID)
}

func TestStoreGetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), ports.KeySessionID)
	require.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestStorePutOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.KeySessionID, "sess-old"))
	require.NoError(t, store.Put(ctx, ports.KeySessionID, "sess-new"))

	value, err := store.Get(ctx, ports.KeySessionID)
	require.NoError(t, err)
	assert.Equal(t, "sess-new", value)
}

func TestStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.KeySessionID, "sess-1"))
	require.NoError(t, store.Delete(ctx, ports.KeySessionID))

	_, err := store.Get(ctx, ports.KeySessionID)
	require.ErrorIs(t, err, ports.ErrKeyNotFound)

	// Deleting an absent key is a no-op.
	require.NoError(t, store.Delete(ctx, ports.KeySessionID))
}

func TestStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	statePath := filepath.Join(dir, "state.toml")
	cfg := viper.New()
	cfg.Set("state.path", statePath)

	first, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Put(context.Background(), ports.KeyDeviceID, "device-xyz"))

	second, err := NewStore(cfg)
	require.NoError(t, err)
	value, err := second.Get(context.Background(), ports.KeyDeviceID)
	require.NoError(t, err)
	assert.Equal(t, "device-xyz", value)
}

func TestStoreRejectsUnknownVersion(t *testing.T) {
	store, statePath := newTestStore(t)

	data := "version = 99\n\n[values]\ndevice_id = \"device-1\"\n"
	require.NoError(t, os.WriteFile(statePath, []byte(data), 0o600))

	_, err := store.Get(context.Background(), ports.KeyDeviceID)
	require.ErrorContains(t, err, "unsupported state file version")
}

func TestStoreFilePermissions(t *testing.T) {
	store, statePath := newTestStore(t)

	require.NoError(t, store.Put(context.Background(), ports.KeyDeviceID, "device-1"))

	info, err := os.Stat(statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	store, _ := newTestStore(t)

	require.Error(t, store.Put(context.Background(), "  ", "value"))
	_, err := store.Get(context.Background(), "")
	require.Error(t, err)
}

func TestStoreRespectsCancelledContext(t *testing.T) {
	store, _ := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, ports.KeyDeviceID)
	require.ErrorIs(t, err, context.Canceled)
}
