// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides mission/chat/gallery persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that SQLiteStore satisfies Store
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS missions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  TEXT NOT NULL,

			CHECK (status IN ('pending', 'completed'))
		);

		CREATE INDEX IF NOT EXISTS idx_missions_status ON missions(status);

		CREATE TABLE IF NOT EXISTS chat_turns (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL,

			CHECK (role IN ('user', 'model'))
		);

		CREATE INDEX IF NOT EXISTS idx_chat_turns_created ON chat_turns(created_at);

		CREATE TABLE IF NOT EXISTS gallery_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL DEFAULT 'uploaded',
			url        TEXT NOT NULL,
			prompt     TEXT,
			created_at TEXT NOT NULL,

			CHECK (kind IN ('uploaded', 'generated'))
		);

		CREATE INDEX IF NOT EXISTS idx_gallery_created ON gallery_entries(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// Migration: gallery entries gained a prompt column when generated
	// images arrived. SQLite doesn't support ADD COLUMN IF NOT EXISTS,
	// so we check pragma_table_info first.
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM pragma_table_info('gallery_entries') WHERE name = 'prompt'`).Scan(&exists)
	if err != nil {
		if _, err := s.db.Exec(`ALTER TABLE gallery_entries ADD COLUMN prompt TEXT`); err != nil {
			return fmt.Errorf("adding prompt column to gallery_entries: %w", err)
		}
		s.logger.Info("applied migration", "column", "prompt", "table", "gallery_entries")
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ping verifies the database connection is alive
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isConstraintViolation checks if the error is a SQLite constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "constraint failed")
}

// CreateMission inserts a new mission with status "pending" and returns
// the created row including its assigned ID.
func (s *SQLiteStore) CreateMission(ctx context.Context, title, description string) (*Mission, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO missions (title, description, status, created_at)
		VALUES (?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		title,
		description,
		MissionStatusPending,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting mission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading mission id: %w", err)
	}

	s.logger.Debug("created mission", "id", id, "title", title)
	return &Mission{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      MissionStatusPending,
		CreatedAt:   now,
	}, nil
}

// ListMissions returns all missions in creation order (oldest first).
func (s *SQLiteStore) ListMissions(ctx context.Context) ([]*Mission, error) {
	query := `
		SELECT id, title, description, status, created_at
		FROM missions
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	defer rows.Close()

	var missions []*Mission
	for rows.Next() {
		var m Mission
		var createdAtStr string

		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Status, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning mission row: %w", err)
		}

		m.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing mission created_at: %w", err)
		}

		missions = append(missions, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mission rows: %w", err)
	}

	return missions, nil
}

// UpdateMissionStatus flips a mission's status.
// Returns ErrNotFound if the mission doesn't exist.
func (s *SQLiteStore) UpdateMissionStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE missions SET status = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("invalid mission status %q: %w", status, err)
		}
		return fmt.Errorf("updating mission status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated mission status", "id", id, "status", status)
	return nil
}

// DeleteMission removes a mission.
// Returns ErrNotFound if the mission doesn't exist.
func (s *SQLiteStore) DeleteMission(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting mission: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted mission", "id", id)
	return nil
}

// CountMissions returns the total number of missions.
func (s *SQLiteStore) CountMissions(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM missions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting missions: %w", err)
	}
	return count, nil
}

// AppendChatTurn appends a turn to the conversation log and returns the
// created row including its assigned ID.
func (s *SQLiteStore) AppendChatTurn(ctx context.Context, role, content string) (*ChatTurn, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO chat_turns (role, content, created_at)
		VALUES (?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query, role, content, now.Format(time.RFC3339))
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("invalid chat role %q: %w", role, err)
		}
		return nil, fmt.Errorf("inserting chat turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading chat turn id: %w", err)
	}

	s.logger.Debug("appended chat turn", "id", id, "role", role)
	return &ChatTurn{
		ID:        id,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}, nil
}

// RecentChatTurns retrieves the most recent `limit` turns, returned in
// chronological order (oldest first). If limit is 0 or negative, all
// turns are returned. Insertion order breaks same-timestamp ties.
func (s *SQLiteStore) RecentChatTurns(ctx context.Context, limit int) ([]*ChatTurn, error) {
	var query string
	var args []any

	if limit > 0 {
		// Get the N most recent turns, but return them in chronological
		// order. We use a subquery to get the most recent N, then order
		// ascending.
		query = `
			SELECT id, role, content, created_at
			FROM (
				SELECT id, role, content, created_at
				FROM chat_turns
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			)
			ORDER BY created_at ASC, id ASC
		`
		args = []any{limit}
	} else {
		query = `
			SELECT id, role, content, created_at
			FROM chat_turns
			ORDER BY created_at ASC, id ASC
		`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chat turns: %w", err)
	}
	defer rows.Close()

	var turns []*ChatTurn
	for rows.Next() {
		var turn ChatTurn
		var createdAtStr string

		if err := rows.Scan(&turn.ID, &turn.Role, &turn.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning chat turn row: %w", err)
		}

		turn.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing chat turn created_at: %w", err)
		}

		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat turn rows: %w", err)
	}

	return turns, nil
}

// ClearChatTurns deletes the entire conversation history.
// Clearing an already-empty history is not an error.
func (s *SQLiteStore) ClearChatTurns(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_turns`); err != nil {
		return fmt.Errorf("clearing chat turns: %w", err)
	}

	s.logger.Debug("cleared chat history")
	return nil
}

// CountChatTurns returns the total number of chat turns.
func (s *SQLiteStore) CountChatTurns(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_turns`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chat turns: %w", err)
	}
	return count, nil
}

// AddGalleryEntry inserts a gallery entry and returns the created row
// including its assigned ID. Prompt may be empty for uploads.
func (s *SQLiteStore) AddGalleryEntry(ctx context.Context, kind, url, prompt string) (*GalleryEntry, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO gallery_entries (kind, url, prompt, created_at)
		VALUES (?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		kind,
		url,
		nullString(prompt),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("invalid gallery kind %q: %w", kind, err)
		}
		return nil, fmt.Errorf("inserting gallery entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading gallery entry id: %w", err)
	}

	s.logger.Debug("added gallery entry", "id", id, "kind", kind)
	return &GalleryEntry{
		ID:        id,
		Kind:      kind,
		URL:       url,
		Prompt:    prompt,
		CreatedAt: now,
	}, nil
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListGallery returns all gallery entries, newest first.
func (s *SQLiteStore) ListGallery(ctx context.Context) ([]*GalleryEntry, error) {
	query := `
		SELECT id, kind, url, prompt, created_at
		FROM gallery_entries
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying gallery entries: %w", err)
	}
	defer rows.Close()

	var entries []*GalleryEntry
	for rows.Next() {
		var e GalleryEntry
		var createdAtStr string
		var prompt *string

		if err := rows.Scan(&e.ID, &e.Kind, &e.URL, &prompt, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning gallery row: %w", err)
		}

		e.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing gallery created_at: %w", err)
		}

		// Handle nullable prompt
		if prompt != nil {
			e.Prompt = *prompt
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gallery rows: %w", err)
	}

	return entries, nil
}

// DeleteGalleryEntry removes a gallery entry.
// Returns ErrNotFound if the entry doesn't exist.
func (s *SQLiteStore) DeleteGalleryEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gallery_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting gallery entry: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted gallery entry", "id", id)
	return nil
}
