package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/harikeshranjan/TodoX/internal/core"
)

// SQLiteStore implements core.Store on an embedded SQLite database.
// Tags are stored as a JSON array column. Timestamps are normalized to
// UTC before binding: DATETIME comparisons are textual, so mixed
// offsets would break the due-date range filters and ordering.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath
// and runs schema migration.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// migrate creates the necessary tables
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			due_date DATETIME NOT NULL,
			priority TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(user_id, due_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertUser(ctx context.Context, u *core.User) error {
	if u.ID == "" {
		u.ID = GenerateID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	return mapSQLiteErr(err)
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id))
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE email = ?`, email))
}

func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE username = ?`, username))
}

const userSelect = `
	SELECT id, username, email, password_hash, created_at, updated_at
	FROM users`

func (s *SQLiteStore) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) InsertTask(ctx context.Context, t *core.Task) error {
	if t.ID == "" {
		t.ID = GenerateID()
	}
	tagsJSON, _ := json.Marshal(t.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, due_date, priority, tags, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, t.DueDate.UTC(), t.Priority, string(tagsJSON), t.Completed, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	return mapSQLiteErr(err)
}

const taskSelect = `
	SELECT id, user_id, title, due_date, priority, tags, completed, created_at, updated_at
	FROM tasks`

func (s *SQLiteStore) TaskByID(ctx context.Context, id string) (*core.Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)

	var t core.Task
	var tagsJSON string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.DueDate, &t.Priority, &tagsJSON, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	json.Unmarshal([]byte(tagsJSON), &t.Tags)
	return &t, nil
}

// TasksByOwner scans the caller's tasks. Priority, date-range, and
// completion constraints push down to SQL; the tag membership check
// happens after tag decoding.
func (s *SQLiteStore) TasksByOwner(ctx context.Context, userID string, f core.TaskFilter) ([]core.Task, error) {
	query := taskSelect + ` WHERE user_id = ?`
	args := []any{userID}

	if f.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, f.Priority)
	}
	if f.DueFrom != nil {
		query += ` AND due_date >= ?`
		args = append(args, f.DueFrom.UTC())
	}
	if f.DueBefore != nil {
		query += ` AND due_date < ?`
		args = append(args, f.DueBefore.UTC())
	}
	if f.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, *f.Completed)
	}
	if f.SortByDue {
		query += ` ORDER BY due_date ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		var t core.Task
		var tagsJSON string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.DueDate, &t.Priority, &tagsJSON, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(tagsJSON), &t.Tags)
		if f.Tag != "" && !hasTag(t.Tags, f.Tag) {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) DistinctTags(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM tasks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var tags []string
	for rows.Next() {
		var tagsJSON string
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, err
		}
		var rowTags []string
		json.Unmarshal([]byte(tagsJSON), &rowTags)
		for _, tag := range rowTags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, t *core.Task) error {
	tagsJSON, _ := json.Marshal(t.Tags)
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, due_date = ?, priority = ?, tags = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.DueDate.UTC(), t.Priority, string(tagsJSON), t.Completed, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// mapSQLiteErr translates unique-constraint violations into the store
// sentinel.
func mapSQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return core.ErrDuplicate
	}
	return err
}
