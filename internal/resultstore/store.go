// Package resultstore persists tournament result exports and hands them
// back to the consistency analyzer. The default backend is a directory
// of tournament_*.json files; a Postgres backend can be selected via
// DSN, and an optional S3/minio mirror keeps a copy of every export.
package resultstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tourney/internal/tournament"
)

// Store reads and writes tournament result documents.
type Store struct {
	dir string
	db  *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	cache  *lru.Cache[string, json.RawMessage]
	mirror *S3Mirror
}

// New creates a file-backed store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("results dir %s: %w", dir, err)
	}
	cache, err := lru.New[string, json.RawMessage](1024)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, cache: cache}, nil
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, json.RawMessage](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv picks the Postgres backend when dsn is non-empty and it
// connects, otherwise falls back to the file backend at dir.
func NewFromEnv(dir, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) != "" {
		if s, err := NewPostgres(dsn); err == nil {
			return s, nil
		}
	}
	return New(dir)
}

// SetMirror attaches an optional S3 mirror; every saved run is also
// uploaded there. Pass nil to detach.
func (s *Store) SetMirror(m *S3Mirror) { s.mirror = m }

// Close releases the database handle, if any.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS tournament_runs (
  name TEXT PRIMARY KEY,
  run_id TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tournament_runs_run_id ON tournament_runs (run_id);
`)
	})
	return s.schemaErr
}

// SaveRun stores one tournament export under name (the file name for
// the file backend, the row key for Postgres). It returns the location
// the document was written to.
func (s *Store) SaveRun(ctx context.Context, name string, run *tournament.Run) (string, error) {
	doc, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", err
	}
	loc, err := s.saveDoc(ctx, name, run.ID, doc)
	if err != nil {
		return "", err
	}
	s.cache.Add(name, json.RawMessage(doc))
	if s.mirror != nil {
		if err := s.mirror.Put(ctx, name, doc); err != nil {
			// Mirroring is best-effort; the primary write already landed.
			return loc, fmt.Errorf("saved to %s but mirror failed: %w", loc, err)
		}
	}
	return loc, nil
}

func (s *Store) saveDoc(ctx context.Context, name, runID string, doc []byte) (string, error) {
	if s.db != nil {
		if err := s.ensureSchema(); err != nil {
			return "", err
		}
		_, err := s.db.ExecContext(ctx, `
INSERT INTO tournament_runs (name, run_id, doc)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET run_id=EXCLUDED.run_id, doc=EXCLUDED.doc`,
			name, runID, doc)
		if err != nil {
			return "", err
		}
		return "pg:tournament_runs/" + name, nil
	}
	path := filepath.Join(s.dir, name)
	if filepath.Ext(path) == "" {
		path += ".json"
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// LoadAll returns every stored document whose name matches the glob
// pattern, in stable name order. Unreadable documents are skipped; the
// analyzer tolerates partial data and one bad file must not abort the
// whole analysis.
func (s *Store) LoadAll(ctx context.Context, pattern string) (map[string]json.RawMessage, error) {
	if s.db != nil {
		return s.loadAllDB(ctx, pattern)
	}
	return s.loadAllFiles(pattern)
}

func (s *Store) loadAllFiles(pattern string) (map[string]json.RawMessage, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)
	out := make(map[string]json.RawMessage, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if doc, ok := s.cache.Get(name); ok {
			out[name] = doc
			continue
		}
		doc, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		s.cache.Add(name, json.RawMessage(doc))
		out[name] = doc
	}
	return out, nil
}

func (s *Store) loadAllDB(ctx context.Context, pattern string) (map[string]json.RawMessage, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, doc FROM tournament_runs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var name string
		var doc []byte
		if err := rows.Scan(&name, &doc); err != nil {
			continue
		}
		if ok, _ := filepath.Match(pattern, name); !ok {
			continue
		}
		out[name] = doc
	}
	return out, rows.Err()
}
