package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

const dayFileLayout = "2006/01/02.json"

// FileStore keeps one JSON file per calendar day under base/YYYY/MM/DD.json
// and the active range in base/range.json.
type FileStore struct {
	base string
	now  func() time.Time
}

// NewFileStore returns a FileStore rooted at base.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base, now: time.Now}
}

// dayFilePath returns the path for the given date's JSON file.
func (s *FileStore) dayFilePath(date string) (string, error) {
	t, err := time.Parse(timecalc.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return filepath.Join(s.base, filepath.FromSlash(t.Format(dayFileLayout))), nil
}

// loadDayFile reads the DayFile for date. ok is false if none exists.
func (s *FileStore) loadDayFile(date string) (df model.DayFile, ok bool, err error) {
	path, err := s.dayFilePath(date)
	if err != nil {
		return model.DayFile{}, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.DayFile{Date: date}, false, nil
	}
	if err != nil {
		return model.DayFile{}, false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, false, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, true, nil
}

func (s *FileStore) LoadDay(date string) (*model.Record, error) {
	df, ok, err := s.loadDayFile(date)
	if err != nil || !ok {
		return nil, err
	}
	return df.Record, nil
}

func (s *FileStore) SaveRecords(records []model.Record) error {
	var files []JSONFile
	for _, rec := range records {
		df, ok, err := s.loadDayFile(rec.Date)
		if err != nil {
			return err
		}
		if !ok && rec.State() == model.Empty {
			continue
		}
		now := s.now()
		if df.CreatedAt.IsZero() {
			df.CreatedAt = now
		}
		r := rec.Clone()
		df.Date = rec.Date
		df.Record = &r
		df.UpdatedAt = now
		path, _ := s.dayFilePath(rec.Date)
		files = append(files, JSONFile{Path: path, Value: df})
	}
	return WriteJSONFiles(files)
}

func (s *FileStore) LoadRange(from, to string) ([]model.Record, error) {
	start, err := time.Parse(timecalc.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", from, err)
	}
	end, err := time.Parse(timecalc.DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", to, err)
	}
	var records []model.Record
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rec, err := s.LoadDay(d.Format(timecalc.DateLayout))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// storedDates lists the dates that have a day file, ascending.
func (s *FileStore) storedDates() ([]string, error) {
	var dates []string
	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.base, path)
		if err != nil {
			return nil
		}
		t, err := time.Parse(dayFileLayout, filepath.ToSlash(rel))
		if err != nil {
			return nil
		}
		dates = append(dates, t.Format(timecalc.DateLayout))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", s.base, err)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *FileStore) LoadAll() ([]model.Record, error) {
	dates, err := s.storedDates()
	if err != nil {
		return nil, err
	}
	var records []model.Record
	for _, date := range dates {
		rec, err := s.LoadDay(date)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (s *FileStore) DeleteBefore(date string) (int, error) {
	dates, err := s.storedDates()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range dates {
		if d >= date {
			break
		}
		path, _ := s.dayFilePath(d)
		if err := os.Remove(path); err != nil {
			return n, fmt.Errorf("storage error removing %s: %w", path, err)
		}
		n++
	}
	return n, nil
}

func (s *FileStore) rangePath() string {
	return filepath.Join(s.base, "range.json")
}

func (s *FileStore) LoadActiveRange() (*model.ActiveRange, error) {
	path := s.rangePath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	var r model.ActiveRange
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("corrupt JSON in %s: %w", path, err)
	}
	return &r, nil
}

func (s *FileStore) SaveActiveRange(r model.ActiveRange) error {
	r.UpdatedAt = s.now()
	return WriteJSON(s.rangePath(), r)
}

func (s *FileStore) Close() error { return nil }
