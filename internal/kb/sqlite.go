package kb

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteResolver looks entities up in a table entities(name TEXT, type TEXT)
type SQLiteResolver struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// OpenSQLite opens the database at path
func OpenSQLite(path string) (*SQLiteResolver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open kb database: %w", err)
	}
	r, err := NewSQLiteResolver(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// NewSQLiteResolver prepares the lookup on an open database
func NewSQLiteResolver(db *sql.DB) (*SQLiteResolver, error) {
	stmt, err := db.Prepare(`SELECT type FROM entities WHERE name = ? LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("prepare kb lookup: %w", err)
	}
	return &SQLiteResolver{db: db, stmt: stmt}, nil
}

// Resolve returns the stored type of name
func (r *SQLiteResolver) Resolve(name string) (EntityType, bool, error) {
	var raw string
	err := r.stmt.QueryRow(name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kb lookup %q: %w", name, err)
	}
	t, ok := ParseEntityType(raw)
	return t, ok, nil
}

// Close releases the database
func (r *SQLiteResolver) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}
