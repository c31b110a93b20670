package storesrv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/five82/potluck/internal/guest"
)

// ErrNotFound is returned when no guest has the requested id.
var ErrNotFound = errors.New("guest not found")

const defaultDSN = "sqlite:potluck.db"

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store persists guests in a single SQL table.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to dsn and creates the guests table if needed. A
// postgres:// or postgresql:// DSN uses pgx; anything else is a SQLite path,
// optionally prefixed with "sqlite:".
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = defaultDSN
	}

	var (
		db  *sql.DB
		d   dialect
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		d = dialectPostgres
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		d = dialectSQLite
		path := strings.TrimPrefix(dsn, "sqlite:")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
		db, err = sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One writer at a time; SQLite returns SQLITE_BUSY otherwise.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, dialect: d, now: time.Now}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS guests (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		dish TEXT NOT NULL,
		categories TEXT NOT NULL,
		rsvp TEXT NOT NULL,
		notes TEXT,
		created_at BIGINT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create guests table: %w", err)
	}
	return nil
}

// List returns every guest ordered by creation time.
func (s *Store) List(ctx context.Context) ([]guest.Guest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, dish, categories, rsvp, notes, created_at FROM guests ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select guests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []guest.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guests: %w", err)
	}
	return out, nil
}

// Insert stores a normalized, validated draft under a new id.
func (s *Store) Insert(ctx context.Context, d guest.Draft) (guest.Guest, error) {
	g := d.Guest(guest.ID(uuid.NewString()), s.now().UTC())
	cats, err := encodeCategories(g.Categories)
	if err != nil {
		return guest.Guest{}, err
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO guests (id, name, dish, categories, rsvp, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		string(g.ID), g.Name, g.Dish, cats, string(g.RSVP), nullString(g.Notes), g.CreatedAt.UnixNano())
	if err != nil {
		return guest.Guest{}, fmt.Errorf("insert guest: %w", err)
	}
	return g, nil
}

// Update applies p to the guest with id.
func (s *Store) Update(ctx context.Context, id guest.ID, p guest.Patch) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, s.rebind(`SELECT id, name, dish, categories, rsvp, notes, created_at FROM guests WHERE id = ?`), string(id))
	current, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	next := p.Apply(current)
	cats, err := encodeCategories(next.Categories)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE guests SET name = ?, dish = ?, categories = ?, rsvp = ?, notes = ? WHERE id = ?`),
		next.Name, next.Dish, cats, string(next.RSVP), nullString(next.Notes), string(id)); err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes the guest with id.
func (s *Store) Delete(ctx context.Context, id guest.ID) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM guests WHERE id = ?`), string(id))
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGuest(row scanner) (guest.Guest, error) {
	var (
		g       guest.Guest
		id      string
		cats    string
		rsvp    string
		notes   sql.NullString
		created int64
	)
	if err := row.Scan(&id, &g.Name, &g.Dish, &cats, &rsvp, &notes, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return guest.Guest{}, err
		}
		return guest.Guest{}, fmt.Errorf("scan guest: %w", err)
	}
	g.ID = guest.ID(id)
	g.RSVP = guest.RSVP(rsvp)
	if err := json.Unmarshal([]byte(cats), &g.Categories); err != nil {
		return guest.Guest{}, fmt.Errorf("decode categories for %s: %w", id, err)
	}
	if notes.Valid {
		g.Notes = &notes.String
	}
	g.CreatedAt = time.Unix(0, created).UTC()
	return g, nil
}

func encodeCategories(cats []guest.Category) (string, error) {
	if cats == nil {
		cats = []guest.Category{}
	}
	data, err := json.Marshal(cats)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(data), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
