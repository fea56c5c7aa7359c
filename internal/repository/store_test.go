package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alkozay-factory-api/internal/config"
)

// exerciseBlobStore runs the contract every backend must satisfy.
func exerciseBlobStore(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "alkozay_main_data")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "alkozay_main_data", []byte(`{"v":1}`)))
	got, err := s.Get(ctx, "alkozay_main_data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	require.NoError(t, s.Put(ctx, "alkozay_main_data", []byte(`{"v":2}`)))
	got, err = s.Get(ctx, "alkozay_main_data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	require.NoError(t, s.Put(ctx, "alkozay_backup_1", []byte(`{"v":3}`)))
	got, err = s.Get(ctx, "alkozay_main_data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got), "slots must not overlap")

	require.NoError(t, s.Delete(ctx, "alkozay_main_data"))
	_, err = s.Get(ctx, "alkozay_main_data")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "alkozay_main_data"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, "memory", s.Kind())
	exerciseBlobStore(t, s)
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte(`{"a":1}`)
	require.NoError(t, s.Put(ctx, "k", buf))
	buf[2] = 'b'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)
	assert.Equal(t, "file", s.Kind())
	exerciseBlobStore(t, s)
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, s.Put(context.Background(), key, []byte("{}")), key)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	assert.Equal(t, "sqlite", s.Kind())
	exerciseBlobStore(t, s)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, "test")
	t.Cleanup(func() { s.Close() })

	assert.Equal(t, "redis", s.Kind())
	exerciseBlobStore(t, s)

	require.NoError(t, s.Put(context.Background(), "slot", []byte("{}")))
	assert.True(t, mr.Exists("test:slot"))
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), "slot", []byte("{}")))
	assert.True(t, mr.Exists("alkozay:ledger:slot"))
}

func TestParseSlotSpec(t *testing.T) {
	kind, key, err := ParseSlotSpec(" File:alkozay_main_data ")
	require.NoError(t, err)
	assert.Equal(t, "file", kind)
	assert.Equal(t, "alkozay_main_data", key)

	for _, bad := range []string{"", "file", "file:", ":key"} {
		_, _, err := ParseSlotSpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestOpenSlotsSharesBackends(t *testing.T) {
	dir := t.TempDir()
	cfg := config.StorageConfig{
		FileDir:    dir,
		SQLitePath: filepath.Join(dir, "ledger.db"),
	}
	log, _ := test.NewNullLogger()

	slots, stores, err := OpenSlots(context.Background(), []string{
		"file:alkozay_main_data",
		"file:alkozay_backup_1",
		"sqlite:alkozay_backup_2",
		"memory:alkozay_session_data",
	}, cfg, log)
	require.NoError(t, err)
	defer CloseAll(stores)

	require.Len(t, slots, 4)
	assert.Len(t, stores, 3)
	assert.Equal(t, "file:alkozay_main_data", slots[0].Name())
	assert.Same(t, slots[0].Store, slots[1].Store)
	assert.Equal(t, "sqlite:alkozay_backup_2", slots[2].Name())
	assert.Equal(t, "memory:alkozay_session_data", slots[3].Name())
}

func TestOpenSlotsSkipsUnavailableBackend(t *testing.T) {
	log, hook := test.NewNullLogger()

	slots, stores, err := OpenSlots(context.Background(), []string{
		"redis:alkozay_backup_2",
		"memory:alkozay_session_data",
	}, config.StorageConfig{RedisHost: "127.0.0.1", RedisPort: 1}, log)
	require.NoError(t, err)
	defer CloseAll(stores)

	require.Len(t, slots, 1)
	assert.Equal(t, "memory", slots[0].Store.Kind())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
}

func TestOpenSlotsErrors(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, _, err := OpenSlots(context.Background(), []string{"bogus"}, config.StorageConfig{}, log)
	assert.Error(t, err)

	_, _, err = OpenSlots(context.Background(), []string{"tape:x"}, config.StorageConfig{}, log)
	assert.Error(t, err)
}
