package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS gate_sessions (
	session_id  TEXT PRIMARY KEY,
	app_name    TEXT NOT NULL,
	started_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gate_journal (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id       TEXT NOT NULL,
	seq              INTEGER NOT NULL,
	intent_kind      TEXT NOT NULL,
	intent_json      TEXT NOT NULL,
	effects          TEXT,
	status_kind      TEXT,
	content_visible  INTEGER NOT NULL,
	can_show_content INTEGER NOT NULL,
	active_alert     TEXT,
	fetching         INTEGER NOT NULL,
	created_at       TEXT NOT NULL,
	UNIQUE (session_id, seq),
	FOREIGN KEY (session_id) REFERENCES gate_sessions(session_id)
);
`

// #endregion schema

// #region store-struct
// Store is the SQLite-backed decision journal.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region begin-session
// BeginSession records a new gate session.
func (s *Store) BeginSession(sessionID, appName string) error {
	_, err := s.db.Exec(
		`INSERT INTO gate_sessions (session_id, app_name, started_at) VALUES (?, ?, ?)`,
		sessionID, appName, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin session %s: %w", sessionID, err)
	}
	return nil
}

// #endregion begin-session

// #region append
// Append writes one journal entry.
func (s *Store) Append(entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO gate_journal (session_id, seq, intent_kind, intent_json, effects, status_kind,
		 content_visible, can_show_content, active_alert, fetching, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Seq,
		entry.IntentKind,
		entry.IntentJSON,
		nullIfEmpty(strings.Join(entry.Effects, ",")),
		nullIfEmpty(entry.StatusKind),
		boolInt(entry.ContentVisible),
		boolInt(entry.CanShowContent),
		nullIfEmpty(entry.ActiveAlert),
		boolInt(entry.Fetching),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append journal %s/%d: %w", entry.SessionID, entry.Seq, err)
	}
	return nil
}

// #endregion append

// #region list
// List returns up to limit entries of a session in seq order. limit <= 0 means all.
func (s *Store) List(sessionID string, limit int) ([]Entry, error) {
	query := `SELECT session_id, seq, intent_kind, intent_json, effects, status_kind,
		content_visible, can_show_content, active_alert, fetching, created_at
		FROM gate_journal WHERE session_id = ? ORDER BY seq ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal %s: %w", sessionID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var effects, statusKind, activeAlert sql.NullString
		var visible, canShow, fetching int
		var createdStr string
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.IntentKind, &e.IntentJSON, &effects, &statusKind,
			&visible, &canShow, &activeAlert, &fetching, &createdStr); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		if effects.Valid {
			e.Effects = strings.Split(effects.String, ",")
		}
		e.StatusKind = statusKind.String
		e.ActiveAlert = activeAlert.String
		e.ContentVisible = visible != 0
		e.CanShowContent = canShow != 0
		e.Fetching = fetching != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Sessions returns the most recent sessions first, with their intent counts.
func (s *Store) Sessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT s.session_id, s.app_name, s.started_at, COUNT(j.id)
		 FROM gate_sessions s LEFT JOIN gate_journal j ON j.session_id = s.session_id
		 GROUP BY s.session_id ORDER BY s.started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var r SessionRecord
		var startedStr string
		if err := rows.Scan(&r.SessionID, &r.AppName, &startedStr, &r.Intents); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
