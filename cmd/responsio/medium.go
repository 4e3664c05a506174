package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/responsio/pkg/adapters/file"
	"github.com/aretw0/responsio/pkg/adapters/memory"
	"github.com/aretw0/responsio/pkg/adapters/redis"
	"github.com/aretw0/responsio/pkg/adapters/sqlite"
	"github.com/aretw0/responsio/pkg/config"
	"github.com/aretw0/responsio/pkg/persistence/middleware"
	"github.com/aretw0/responsio/pkg/ports"
)

// lister is implemented by media that can enumerate their namespaces.
type lister interface {
	List(ctx context.Context) ([]string, error)
}

// openMedium builds the medium selected by the settings, encrypted when a key is configured.
// The returned closer releases it; it is never nil.
func openMedium(s config.Storage) (ports.Medium, io.Closer, error) {
	medium, closer, err := openDriver(s)
	if err != nil || s.EncryptionKey == "" {
		return medium, closer, err
	}

	key, err := middleware.ParseKey(s.EncryptionKey)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return middleware.Chain(medium, mw), closer, nil
}

func openDriver(s config.Storage) (ports.Medium, io.Closer, error) {
	switch s.Driver {
	case config.DriverFile:
		return file.New(s.Path), nopCloser{}, nil
	case config.DriverRedis:
		store := redis.New(s.Redis.Addr, s.Redis.Password, s.Redis.DB,
			redis.WithPrefix(s.Redis.Prefix),
			redis.WithTTL(s.Redis.TTL),
		)
		return store, store, nil
	case config.DriverSQLite:
		store, err := sqlite.New(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.DriverMemory:
		return memory.NewStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
