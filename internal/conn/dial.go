package conn

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aevon-lab/eventbook/internal/config"
	"github.com/aevon-lab/eventbook/internal/core/storage"
	"github.com/aevon-lab/eventbook/internal/core/storage/memory"
	"github.com/aevon-lab/eventbook/internal/core/storage/mongodb"
	"github.com/aevon-lab/eventbook/internal/core/storage/postgres"
)

// DefaultURIEnv is the variable koanf's env provider maps to database.uri.
const DefaultURIEnv = config.EnvPrefix + "DATABASE__URI"

// Dial returns the DialFunc that opens the backend named by the URI scheme.
func Dial(cfg config.DatabaseConfig) DialFunc {
	return func(ctx context.Context, uri string) (storage.Backend, error) {
		switch s := scheme(uri); s {
		case "postgres", "postgresql":
			a, err := postgres.Open(ctx, uri, postgres.Options{
				MaxOpenConns:   cfg.MaxOpenConns,
				MaxIdleConns:   cfg.MaxIdleConns,
				AutoMigrate:    cfg.AutoMigrate,
				ConnectTimeout: cfg.Timeout(),
			})
			if err != nil {
				return nil, err
			}
			return a, nil

		case "mongodb", "mongodb+srv":
			a, err := mongodb.Open(ctx, uri, mongodb.Options{
				Database:       cfg.Name,
				ConnectTimeout: cfg.Timeout(),
			})
			if err != nil {
				return nil, err
			}
			return a, nil

		case "memory":
			return memory.NewAdapter(), nil

		default:
			return nil, &ConfigurationError{
				Key:     "database.uri",
				Message: fmt.Sprintf("unsupported scheme %q (want postgres, mongodb or memory)", s),
			}
		}
	}
}

// FromEnv reads the connection URI from the environment variable key,
// or from DefaultURIEnv when key is empty.
func FromEnv(key string) string {
	if key == "" {
		key = DefaultURIEnv
	}
	return strings.TrimSpace(os.Getenv(key))
}
