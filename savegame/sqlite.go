package savegame

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	target_id INTEGER NOT NULL,
	arrived INTEGER NOT NULL,
	visited_json TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS games_session ON games(session_id);
`

// Archive keeps saved games in a local SQLite file.
type Archive struct {
	db *sqlx.DB
}

// OpenArchive opens or creates the archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened game archive")
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Save(ctx context.Context, rec Record) (string, error) {
	visited, err := json.Marshal(nonNil(rec.Visited))
	if err != nil {
		return "", err
	}
	res, err := a.db.ExecContext(ctx,
		`INSERT INTO games (session_id, username, target_id, arrived, visited_json, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Username, rec.TargetID, rec.Arrived, string(visited),
		rec.SavedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	if err != nil {
		return "", fmt.Errorf("failed to save game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
