package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ctwrap/internal/sim"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS groups (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_metadata (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// sqliteArtifact is the default container: a single SQLite file with one
// row per result group and a single-row provenance table.
type sqliteArtifact struct {
	db *sql.DB
}

func openSQLite(path string) (Artifact, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init artifact schema: %w", err)
	}
	return &sqliteArtifact{db: db}, nil
}

func (a *sqliteArtifact) Groups() ([]string, error) {
	rows, err := a.db.Query(`SELECT name FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *sqliteArtifact) ReadGroup(name string) (*sim.Result, error) {
	var payload string
	err := a.db.QueryRow(`SELECT payload FROM groups WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read group %q: %w", name, err)
	}
	var res sim.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("decode group %q: %w", name, err)
	}
	return &res, nil
}

func (a *sqliteArtifact) WriteGroup(name string, result *sim.Result, force bool) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode group %q: %w", name, err)
	}

	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM groups WHERE name = ?)`, name).Scan(&exists); err != nil {
		return fmt.Errorf("check group %q: %w", name, err)
	}
	if exists {
		if !force {
			return fmt.Errorf("%w: %q (use force to override)", ErrGroupExists, name)
		}
		if _, err := tx.Exec(`DELETE FROM groups WHERE name = ?`, name); err != nil {
			return fmt.Errorf("replace group %q: %w", name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO groups (name, payload, created_at) VALUES (?, ?, ?)`,
		name, string(payload), nowUTC()); err != nil {
		return fmt.Errorf("write group %q: %w", name, err)
	}
	return tx.Commit()
}

func (a *sqliteArtifact) WriteMetadata(meta any) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = a.db.Exec(`INSERT INTO run_metadata (id, payload, created_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		string(payload), nowUTC())
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (a *sqliteArtifact) Metadata() (json.RawMessage, error) {
	var payload string
	err := a.db.QueryRow(`SELECT payload FROM run_metadata WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return json.RawMessage(payload), nil
}

func (a *sqliteArtifact) Close() error { return a.db.Close() }
