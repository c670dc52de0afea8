package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/focusplan/core/metrics/load"
)

// SQLiteStore persists daily meeting load records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS meeting_load (
        user_id TEXT,
        day INTEGER,
        meetings INTEGER,
        minutes REAL,
        PRIMARY KEY(user_id, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

const upsert = `INSERT INTO meeting_load (user_id, day, meetings, minutes)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id, day) DO UPDATE SET
            meetings = meetings + excluded.meetings,
            minutes = minutes + excluded.minutes`

// Add inserts or accumulates into the record of the user and day.
func (s *SQLiteStore) Add(r load.Record) error {
	_, err := s.db.Exec(upsert, r.UserID, load.Day(r.Date).Unix(), r.Meetings, r.MeetingMinutes)
	return err
}

// Replace swaps the user's records for the days of [start, end) in a
// single transaction.
func (s *SQLiteStore) Replace(userID string, start, end time.Time, recs []load.Record) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.Exec(`DELETE FROM meeting_load WHERE user_id = ? AND day >= ? AND day < ?`,
		userID, load.Day(start).Unix(), end.Unix()); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err = tx.Exec(upsert, userID, load.Day(r.Date).Unix(), r.Meetings, r.MeetingMinutes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(userID string, start, end time.Time) ([]load.Record, error) {
	start = load.Day(start)
	end = load.Day(end)
	rows, err := s.db.Query(`SELECT user_id, day, meetings, minutes
        FROM meeting_load WHERE user_id = ? AND day >= ? AND day <= ? ORDER BY day`,
		userID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []load.Record
	for rows.Next() {
		var (
			uid      string
			ts       int64
			meetings int
			minutes  float64
		)
		if err := rows.Scan(&uid, &ts, &meetings, &minutes); err != nil {
			return nil, err
		}
		res = append(res, load.Record{
			UserID:         uid,
			Date:           time.Unix(ts, 0).UTC(),
			Meetings:       meetings,
			MeetingMinutes: minutes,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
