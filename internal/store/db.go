// Package store persists explorer sessions (expansion set and selection
// per watched root) and key/value settings in a local sqlite database.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/justyntemme/arbor/internal/debug"
)

type EventType int

const (
	LoadSession EventType = iota
	SaveSession
	FetchSettings
	SaveSetting
)

// Session is the persisted view state for one watched root.
type Session struct {
	Root     string
	Expanded []string
	Selected string
}

type Request struct {
	Op      EventType
	Session Session // For SaveSession; Session.Root alone for LoadSession
	Key     string
	Value   string
}

type Response struct {
	Op       EventType
	Session  *Session          // Nil when no session is stored for the root
	Settings map[string]string // Key-value settings
	Err      error
}

type DB struct {
	conn         *sql.DB
	RequestChan  chan Request
	ResponseChan chan Response
}

func NewDB() *DB {
	return &DB{
		RequestChan:  make(chan Request, 16),
		ResponseChan: make(chan Response, 16),
	}
}

// Open initializes the database connection and schema
func (d *DB) Open(dbPath string) error {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	// Synchronous NORMAL is safe against app crashes, faster than FULL
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		return err
	}

	sessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		root TEXT PRIMARY KEY,
		expanded TEXT NOT NULL,
		selected TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(sessionsQuery); err != nil {
		return err
	}

	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(settingsQuery); err != nil {
		return err
	}

	d.conn = db
	return nil
}

// Start runs the worker loop until RequestChan is closed.
func (d *DB) Start() {
	for req := range d.RequestChan {
		switch req.Op {
		case LoadSession:
			d.handleLoadSession(req.Session.Root)
		case SaveSession:
			d.handleSaveSession(req.Session)
		case FetchSettings:
			d.handleFetchSettings()
		case SaveSetting:
			d.handleSaveSetting(req.Key, req.Value)
		}
	}
}

func (d *DB) handleLoadSession(root string) {
	row := d.conn.QueryRow("SELECT expanded, selected FROM sessions WHERE root = ?", root)

	var expandedJSON, selected string
	err := row.Scan(&expandedJSON, &selected)
	if err == sql.ErrNoRows {
		d.ResponseChan <- Response{Op: LoadSession}
		return
	}
	if err != nil {
		d.ResponseChan <- Response{Op: LoadSession, Err: err}
		return
	}

	var expanded []string
	if err := json.Unmarshal([]byte(expandedJSON), &expanded); err != nil {
		// A corrupt row is treated as no session rather than an error
		debug.Log(debug.STORE, "corrupt session row for %s: %v", root, err)
		d.ResponseChan <- Response{Op: LoadSession}
		return
	}

	d.ResponseChan <- Response{Op: LoadSession, Session: &Session{
		Root:     root,
		Expanded: expanded,
		Selected: selected,
	}}
}

// handleSaveSession upserts without responding: saves are fire-and-forget,
// issued on every snapshot change.
func (d *DB) handleSaveSession(s Session) {
	expandedJSON, err := json.Marshal(s.Expanded)
	if err != nil {
		debug.Log(debug.STORE, "marshal session: %v", err)
		return
	}

	_, err = d.conn.Exec(`
		INSERT INTO sessions (root, expanded, selected, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(root) DO UPDATE SET
			expanded = excluded.expanded,
			selected = excluded.selected,
			updated_at = CURRENT_TIMESTAMP`,
		s.Root, string(expandedJSON), s.Selected)
	if err != nil {
		debug.Log(debug.STORE, "save session: %v", err)
	}
}

func (d *DB) handleFetchSettings() {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		d.ResponseChan <- Response{Op: FetchSettings, Err: err}
		return
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err == nil {
			settings[key] = value
		}
	}

	d.ResponseChan <- Response{Op: FetchSettings, Settings: settings}
}

func (d *DB) handleSaveSetting(key, value string) {
	// Use INSERT OR REPLACE to upsert the setting
	_, err := d.conn.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		debug.Log(debug.STORE, "save setting: %v", err)
	}
}

func (d *DB) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
