package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/staff-be/internal/storage"
	"github.com/hongminglow/staff-be/internal/storage/postgres"
	"github.com/hongminglow/staff-be/internal/storage/sqlite"
)

// OpenStore picks the backend from the URL scheme: postgres:// (or
// postgresql://), sqlite://path, or sqlite::memory:.
func OpenStore(ctx context.Context, databaseURL string) (storage.Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		store, err := postgres.NewStore(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case databaseURL == "sqlite::memory:", strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if databaseURL == "sqlite::memory:" {
			path = sqlite.MemoryPath
		}
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme in %q", redact(databaseURL))
	}
}

func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "…"
	}
	return "…"
}
