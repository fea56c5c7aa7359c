package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"alkozay-factory-api/internal/config"
)

// ParseSlotSpec splits a "kind:key" slot spec.
func ParseSlotSpec(spec string) (kind, key string, err error) {
	kind, key, ok := strings.Cut(strings.TrimSpace(spec), ":")
	kind = strings.ToLower(strings.TrimSpace(kind))
	key = strings.TrimSpace(key)
	if !ok || kind == "" || key == "" {
		return "", "", fmt.Errorf("invalid slot spec %q: want kind:key", spec)
	}
	return kind, key, nil
}

// OpenSlots opens the backends named by specs, sharing one store per kind, and
// returns the slots in spec order together with the stores to close on shutdown.
// A backend that fails to open is logged and its slots are skipped; an error is
// returned only if no slot at all could be opened or a spec is malformed.
func OpenSlots(ctx context.Context, specs []string, cfg config.StorageConfig, log logrus.FieldLogger) ([]Slot, []BlobStore, error) {
	stores := make(map[string]BlobStore)
	failed := make(map[string]bool)
	var (
		slots  []Slot
		opened []BlobStore
	)

	for _, spec := range specs {
		kind, key, err := ParseSlotSpec(spec)
		if err != nil {
			closeAll(opened)
			return nil, nil, err
		}
		if failed[kind] {
			continue
		}

		store, ok := stores[kind]
		if !ok {
			store, err = openBackend(ctx, kind, cfg)
			if err != nil {
				log.WithError(err).WithField("backend", kind).Warn("Storage backend unavailable, skipping its slots")
				failed[kind] = true
				continue
			}
			stores[kind] = store
			opened = append(opened, store)
			log.WithField("backend", kind).Info("Storage backend opened")
		}
		slots = append(slots, Slot{Key: key, Store: store})
	}

	if len(slots) == 0 {
		closeAll(opened)
		return nil, nil, fmt.Errorf("no storage slot could be opened from %v", specs)
	}
	return slots, opened, nil
}

func openBackend(ctx context.Context, kind string, cfg config.StorageConfig) (BlobStore, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.FileDir)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "mysql":
		return NewMySQLStore(cfg.MySQLDSN())
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN())
	case "redis":
		return NewRedisStore(RedisStoreConfig{
			Addr:      cfg.RedisAddress(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	case "gcs":
		return NewGCSStore(ctx, GCSStoreConfig{
			Bucket:          cfg.GCSBucket,
			Prefix:          cfg.GCSPrefix,
			CredentialsJSON: cfg.GCSCredentialsJSON,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

// CloseAll closes every store, ignoring errors.
func CloseAll(stores []BlobStore) {
	closeAll(stores)
}

func closeAll(stores []BlobStore) {
	for _, s := range stores {
		_ = s.Close()
	}
}
