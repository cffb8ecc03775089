package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/domain/user"
)

const (
	CollectionEmployees   = "employees"
	CollectionEvaluations = "evaluations"
	CollectionUsers       = "users"
)

// ErrNilCollection rejects writes that are not a proper list.
var ErrNilCollection = errors.New("collection payload must be a list")

// Store persists each collection as a single JSON array blob keyed by
// collection name. Reads never fail: an absent or corrupted blob degrades
// to an empty collection.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps the whole-snapshot overwrite atomic.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS collections (
      name TEXT PRIMARY KEY,
      payload TEXT NOT NULL,
      updated_at TEXT NOT NULL DEFAULT (datetime('now'))
    )
  `)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Employees() []employee.Employee {
	return load[employee.Employee](s, CollectionEmployees)
}

func (s *Store) Evaluations() []evaluation.FullEvaluation {
	return load[evaluation.FullEvaluation](s, CollectionEvaluations)
}

func (s *Store) Users() []user.User {
	return load[user.User](s, CollectionUsers)
}

func (s *Store) SaveEmployees(ctx context.Context, list []employee.Employee) error {
	return save(ctx, s, CollectionEmployees, list)
}

func (s *Store) SaveEvaluations(ctx context.Context, list []evaluation.FullEvaluation) error {
	return save(ctx, s, CollectionEvaluations, list)
}

func (s *Store) SaveUsers(ctx context.Context, list []user.User) error {
	return save(ctx, s, CollectionUsers, list)
}

// HasCollection distinguishes a collection that was never written from one
// that was intentionally saved empty.
func (s *Store) HasCollection(name string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM collections WHERE name = ?", name).Scan(&one)
	return err == nil
}

func load[T any](s *Store, name string) []T {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM collections WHERE name = ?", name).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("local collection read failed", "collection", name, "err", err)
		}
		return []T{}
	}

	var out []T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		slog.Warn("local collection corrupted, degrading to empty", "collection", name, "err", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func save[T any](ctx context.Context, s *Store, name string, list []T) error {
	if list == nil {
		return ErrNilCollection
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
    INSERT INTO collections (name, payload, updated_at)
    VALUES (?, ?, datetime('now'))
    ON CONFLICT(name) DO UPDATE
      SET payload = excluded.payload,
          updated_at = excluded.updated_at
  `, name, string(payload))
	return err
}
