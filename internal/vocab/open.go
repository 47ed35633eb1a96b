package vocab

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Source is an opened vocabulary backend.
type Source struct {
	Lookup Lookup
	Kind   string // "builtin", "yaml" or "sqlite"
	close  []func() error
}

// Close releases the backend.
func (s *Source) Close() error {
	var first error
	for i := len(s.close) - 1; i >= 0; i-- {
		if err := s.close[i](); err != nil && first == nil {
			first = err
		}
	}
	s.close = nil
	return first
}

// Open selects a backend by file extension: .yaml/.yml word lists, .db,
// .sqlite or .sqlite3 databases, and the builtin list for an empty path.
// Database-backed lookups are wrapped in a TTL cache.
func Open(ctx context.Context, path string, cacheTTL time.Duration) (*Source, error) {
	if path == "" {
		return &Source{Lookup: Builtin(), Kind: "builtin"}, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err := LoadYAML(path)
		if err != nil {
			return nil, err
		}
		return &Source{Lookup: m, Kind: "yaml"}, nil
	case ".db", ".sqlite", ".sqlite3":
		db, err := OpenSQLite(ctx, path, false)
		if err != nil {
			return nil, err
		}
		cached := NewCachedLookup(db, cacheTTL)
		return &Source{
			Lookup: cached,
			Kind:   "sqlite",
			close: []func() error{
				db.Close,
				func() error { cached.Close(); return nil },
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported vocabulary file %q (want .yaml, .yml, .db, .sqlite)", path)
	}
}
