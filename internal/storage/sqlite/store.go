// Package sqlite holds the locally-edited task list. Tasks changed while
// offline or during a guest session live here until a sync pushes them to the
// remote store and replaces the cache with the reconciled set.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"spaces/internal/models"
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes the local store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS local_tasks (
            local_id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id TEXT NOT NULL,
            task_id INTEGER NOT NULL DEFAULT 0,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            completed INTEGER NOT NULL DEFAULT 0,
            checklist TEXT NOT NULL DEFAULT '[]',
            due_date DATETIME,
            reminder TEXT NOT NULL DEFAULT '{}',
            team_id TEXT NOT NULL DEFAULT '',
            is_team_task INTEGER NOT NULL DEFAULT 0,
            assigned_to TEXT NOT NULL DEFAULT '',
            created_at DATETIME,
            updated_at DATETIME
        );`,
		`CREATE INDEX IF NOT EXISTS idx_local_tasks_user ON local_tasks(user_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_local_tasks_user_task
            ON local_tasks(user_id, task_id) WHERE task_id > 0;`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const taskColumns = `task_id, title, description, category, completed, checklist,
    due_date, reminder, team_id, is_team_task, assigned_to, created_at, updated_at`

// ListTasks returns the locally-held tasks for a user in insertion order.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+`
        FROM local_tasks WHERE user_id = ? ORDER BY local_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list local tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpsertTask stores a local edit. Tasks that already have a remote id replace
// their previous local copy; never-synced tasks are appended.
func (s *Store) UpsertTask(ctx context.Context, userID string, t models.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	checklist, reminder, err := encodeTask(t)
	if err != nil {
		return err
	}

	if t.ID > 0 {
		_, err = s.db.ExecContext(ctx, `INSERT INTO local_tasks
            (user_id, `+taskColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(user_id, task_id) WHERE task_id > 0 DO UPDATE SET
                title = excluded.title,
                description = excluded.description,
                category = excluded.category,
                completed = excluded.completed,
                checklist = excluded.checklist,
                due_date = excluded.due_date,
                reminder = excluded.reminder,
                team_id = excluded.team_id,
                is_team_task = excluded.is_team_task,
                assigned_to = excluded.assigned_to,
                created_at = excluded.created_at,
                updated_at = excluded.updated_at`,
			userID, t.ID, t.Title, t.Description, t.Category, t.Completed, checklist,
			nullableTime(t.DueDate), reminder, t.TeamID, t.IsTeamTask, t.AssignedTo,
			t.CreatedAt, t.UpdatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, `INSERT INTO local_tasks
            (user_id, `+taskColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, t.ID, t.Title, t.Description, t.Category, t.Completed, checklist,
			nullableTime(t.DueDate), reminder, t.TeamID, t.IsTeamTask, t.AssignedTo,
			t.CreatedAt, t.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("upsert local task: %w", err)
	}
	return nil
}

// DeleteTask removes one task from the local cache by its remote id.
func (s *Store) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_tasks WHERE user_id = ? AND task_id = ?`, userID, taskID)
	if err != nil {
		return fmt.Errorf("delete local task: %w", err)
	}
	return nil
}

// ReplaceAll swaps the user's whole local task list for the given set, used
// after a successful sync so the cache mirrors the reconciled state.
func (s *Store) ReplaceAll(ctx context.Context, userID string, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace local tasks: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM local_tasks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("replace local tasks: %w", err)
	}

	for _, t := range tasks {
		checklist, reminder, err := encodeTask(t)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO local_tasks
            (user_id, `+taskColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, t.ID, t.Title, t.Description, t.Category, t.Completed, checklist,
			nullableTime(t.DueDate), reminder, t.TeamID, t.IsTeamTask, t.AssignedTo,
			t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("replace local tasks: %w", err)
		}
	}

	return tx.Commit()
}

func encodeTask(t models.Task) (checklist, reminder []byte, err error) {
	items := t.Checklist
	if items == nil {
		items = []models.ChecklistItem{}
	}
	checklist, err = json.Marshal(items)
	if err != nil {
		return nil, nil, fmt.Errorf("encode checklist: %w", err)
	}
	reminder, err = json.Marshal(t.Reminder)
	if err != nil {
		return nil, nil, fmt.Errorf("encode reminder: %w", err)
	}
	return checklist, reminder, nil
}

func scanTask(rows *sql.Rows) (models.Task, error) {
	var (
		t         models.Task
		checklist []byte
		reminder  []byte
		dueDate   sql.NullTime
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Completed,
		&checklist, &dueDate, &reminder, &t.TeamID, &t.IsTeamTask, &t.AssignedTo,
		&createdAt, &updatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("scan local task: %w", err)
	}

	if err := json.Unmarshal(checklist, &t.Checklist); err != nil {
		return models.Task{}, fmt.Errorf("decode checklist: %w", err)
	}
	if len(t.Checklist) == 0 {
		t.Checklist = nil
	}
	if err := json.Unmarshal(reminder, &t.Reminder); err != nil {
		return models.Task{}, fmt.Errorf("decode reminder: %w", err)
	}
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
