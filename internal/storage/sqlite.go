package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
)

const activeRangeKey = "active_range"

// SQLiteStore keeps records as JSON documents in a single SQLite table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (and if necessary creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS daily_records (
			date TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadDay(date string) (*model.Record, error) {
	var doc string
	err := s.db.QueryRow(`SELECT record FROM daily_records WHERE date = ?`, date).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", date, err)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("corrupt record for %s: %w", date, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveRecords(records []model.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage error: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Format(time.RFC3339)
	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("storage error marshalling %s: %w", rec.Date, err)
		}
		if rec.State() == model.Empty {
			_, err = tx.Exec(`UPDATE daily_records SET record = ?, updated_at = ? WHERE date = ?`,
				string(doc), now, rec.Date)
		} else {
			_, err = tx.Exec(
				`INSERT INTO daily_records (date, record, created_at, updated_at)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(date) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
				rec.Date, string(doc), now, now,
			)
		}
		if err != nil {
			return fmt.Errorf("storage error saving %s: %w", rec.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage error: %w", err)
	}
	return nil
}

func (s *SQLiteStore) query(q string, args ...any) ([]model.Record, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var date, doc string
		if err := rows.Scan(&date, &doc); err != nil {
			return nil, fmt.Errorf("storage error: %w", err)
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("corrupt record for %s: %w", date, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) LoadRange(from, to string) ([]model.Record, error) {
	return s.query(`SELECT date, record FROM daily_records WHERE date >= ? AND date <= ? ORDER BY date`, from, to)
}

func (s *SQLiteStore) LoadAll() ([]model.Record, error) {
	return s.query(`SELECT date, record FROM daily_records ORDER BY date`)
}

func (s *SQLiteStore) DeleteBefore(date string) (int, error) {
	res, err := s.db.Exec(`DELETE FROM daily_records WHERE date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("storage error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage error: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) LoadActiveRange() (*model.ActiveRange, error) {
	var doc string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, activeRangeKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}
	var r model.ActiveRange
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("corrupt active range: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStore) SaveActiveRange(r model.ActiveRange) error {
	r.UpdatedAt = s.now()
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("storage error marshalling active range: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeRangeKey, string(doc),
	)
	if err != nil {
		return fmt.Errorf("storage error saving active range: %w", err)
	}
	return nil
}
