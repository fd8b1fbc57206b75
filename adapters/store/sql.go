package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"habitboard/domain/filter"
	"habitboard/internal/errors"
	"habitboard/internal/migration"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the database named by a URL and runs the migrations.
// postgres:// and postgresql:// use lib/pq, sqlite3:// uses go-sqlite3 with the rest of the URL as the file path.
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, errors.DatabaseError("failed to create database directory", err)
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to open database", err)
	}
	if driver == "sqlite3" {
		// one writer avoids "database is locked"
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to migrate database", err)
	}
	return db, nil
}

// ParseURL maps a DATABASE_URL to a driver name and data source
func ParseURL(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres", databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		path := strings.TrimPrefix(databaseURL, "sqlite3://")
		if path == "" {
			return "", "", errors.ConfigInvalid("sqlite3 database path is empty")
		}
		return "sqlite3", path, nil
	}
	return "", "", errors.ConfigInvalid(fmt.Sprintf("unsupported database url %q", databaseURL))
}

type viewRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	State     string    `db:"state"`
	Theme     string    `db:"theme"`
	CreatedAt time.Time `db:"created_at"`
}

func (r viewRow) view() (View, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return View{}, errors.Wrapf(err, "invalid view id %q", r.ID)
	}
	var state filter.State
	if err := json.Unmarshal([]byte(r.State), &state); err != nil {
		return View{}, errors.Wrapf(err, "failed to unmarshal state of view %s", r.ID)
	}
	return View{ID: id, Name: r.Name, State: state, Theme: r.Theme, CreatedAt: r.CreatedAt.UTC()}, nil
}

// SQLRepository stores views in a SQL database through sqlx
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a repository over a migrated database
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Save inserts the view, replacing one with the same id
func (r *SQLRepository) Save(ctx context.Context, v *View) error {
	if err := Prepare(v); err != nil {
		return err
	}
	stateJSON, err := json.Marshal(v.State)
	if err != nil {
		return errors.Wrap(err, "failed to marshal view state")
	}

	query := r.db.Rebind(`
		INSERT INTO saved_views (id, name, state, theme, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			state = EXCLUDED.state,
			theme = EXCLUDED.theme`)

	if _, err := r.db.ExecContext(ctx, query, v.ID.String(), v.Name, string(stateJSON), v.Theme, v.CreatedAt); err != nil {
		return errors.DatabaseError("failed to save view", err)
	}
	return nil
}

// Get loads one view
func (r *SQLRepository) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	query := r.db.Rebind(`SELECT id, name, state, theme, created_at FROM saved_views WHERE id = ?`)

	var row viewRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, errors.DatabaseError("failed to get view", err)
	}

	v, err := row.view()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns up to limit views, newest first. A non-positive limit returns all.
func (r *SQLRepository) List(ctx context.Context, limit int) ([]View, error) {
	query := `SELECT id, name, state, theme, created_at FROM saved_views ORDER BY created_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []viewRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list views", err)
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		v, err := row.view()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Delete removes one view
func (r *SQLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM saved_views WHERE id = ?`), id.String())
	if err != nil {
		return errors.DatabaseError("failed to delete view", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.DatabaseError("failed to delete view", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
