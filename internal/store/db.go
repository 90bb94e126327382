package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Recent is one entry in the recently-visited list.
type Recent struct {
	Path       string
	VisitCount int
	LastVisit  time.Time
}

// DB persists pinned directories, recently-visited paths, and key/value
// settings. *sql.DB is safe for concurrent use, so methods can be called from
// any goroutine.
type DB struct {
	conn *sql.DB
}

func NewDB() *DB {
	return &DB{}
}

// DefaultPath returns the database location: ~/.config/dirigent/dirigent.db
func DefaultPath() string {
	configDir, _ := os.UserConfigDir()
	return filepath.Join(configDir, "dirigent", "dirigent.db")
}

// Open initializes the database connection and schema
func (d *DB) Open(dbPath string) error {
	if dbPath == "" {
		dbPath = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	// Performance Tuning
	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	// Synchronous NORMAL is safe against app crashes, faster than FULL
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		return err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pinned (
		path TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS recents (
		path TEXT PRIMARY KEY,
		visit_count INTEGER NOT NULL DEFAULT 1,
		last_visit DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	d.conn = db
	return nil
}

// Pinned returns every pinned directory, oldest first.
func (d *DB) Pinned() ([]string, error) {
	rows, err := d.conn.Query("SELECT path FROM pinned ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// AddPinned pins a directory. Pinning an already-pinned path is a no-op.
func (d *DB) AddPinned(path string) error {
	_, err := d.conn.Exec("INSERT OR IGNORE INTO pinned (path) VALUES (?)", path)
	return err
}

// RemovePinned unpins a directory.
func (d *DB) RemovePinned(path string) error {
	_, err := d.conn.Exec("DELETE FROM pinned WHERE path = ?", path)
	return err
}

// IsPinned reports whether path is pinned.
func (d *DB) IsPinned(path string) (bool, error) {
	var n int
	err := d.conn.QueryRow("SELECT COUNT(*) FROM pinned WHERE path = ?", path).Scan(&n)
	return n > 0, err
}

// TouchRecent records a visit to path, bumping its count and timestamp.
func (d *DB) TouchRecent(path string) error {
	_, err := d.conn.Exec(`
		INSERT INTO recents (path, visit_count, last_visit) VALUES (?, 1, ?)
		ON CONFLICT(path) DO UPDATE SET
			visit_count = visit_count + 1,
			last_visit = excluded.last_visit`,
		path, time.Now().UTC())
	return err
}

// Recents returns up to limit recently-visited paths, most recent first.
func (d *DB) Recents(limit int) ([]Recent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		"SELECT path, visit_count, last_visit FROM recents ORDER BY last_visit DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recent
	for rows.Next() {
		var r Recent
		if err := rows.Scan(&r.Path, &r.VisitCount, &r.LastVisit); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneRecents drops everything beyond the keep most recent entries.
func (d *DB) PruneRecents(keep int) error {
	_, err := d.conn.Exec(`
		DELETE FROM recents WHERE path NOT IN (
			SELECT path FROM recents ORDER BY last_visit DESC LIMIT ?
		)`, keep)
	return err
}

// Setting returns the stored value for key, or "" when unset.
func (d *DB) Setting(key string) (string, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SaveSetting upserts a key/value setting.
func (d *DB) SaveSetting(key, value string) error {
	_, err := d.conn.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	return err
}

// Settings returns all stored settings.
func (d *DB) Settings() (map[string]string, error) {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (d *DB) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
