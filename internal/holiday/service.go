package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/attendance-time-calculator/internal/storage"
)

// Where a holiday list came from.
const (
	OriginCache  = "cache"
	OriginAPI    = "api"
	OriginStatic = "static"
)

// SyncResult describes one sync run.
type SyncResult struct {
	Year     int       `json:"year"`
	Origin   string    `json:"origin"`
	Count    int       `json:"count"`
	SyncedAt time.Time `json:"synced_at"`
}

// cacheFile is the per-year cache. It is valid during the month it was written in.
type cacheFile struct {
	Year     int       `json:"year"`
	Origin   string    `json:"origin"`
	SyncedAt time.Time `json:"synced_at"`
	Holidays []Holiday `json:"holidays"`
}

// Service keeps the holiday cache and personal days off under dir.
type Service struct {
	client *Client
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// NewService returns a Service storing its files under base/holidays.
func NewService(client *Client, base string, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		dir:    filepath.Join(base, "holidays"),
		now:    time.Now,
		logger: logger.With().Str("component", "holiday").Logger(),
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) cachePath(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("holidays_%d.json", year))
}

func (s *Service) daysOffPath() string {
	return filepath.Join(s.dir, "days_off.json")
}

func (s *Service) loadCache(year int) (*cacheFile, error) {
	var c cacheFile
	ok, err := readJSON(s.cachePath(year), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// fresh reports whether a cache was written in the current month.
func (s *Service) fresh(c *cacheFile) bool {
	now := s.now()
	return c.SyncedAt.Year() == now.Year() && c.SyncedAt.Month() == now.Month()
}

// Sync refreshes the holidays of year. A cache written this month is reused
// unless force is set. A failed or empty API answer falls back to the
// built-in list where one exists.
func (s *Service) Sync(ctx context.Context, year int, force bool) (SyncResult, error) {
	if !force {
		c, err := s.loadCache(year)
		if err != nil {
			s.logger.Warn().Err(err).Int("year", year).Msg("ignoring unreadable holiday cache")
		}
		if c != nil && s.fresh(c) {
			s.logger.Debug().Int("year", year).Msg("holiday cache is current")
			return SyncResult{Year: year, Origin: OriginCache, Count: len(c.Holidays), SyncedAt: c.SyncedAt}, nil
		}
	}

	origin := OriginAPI
	holidays, err := s.client.FetchYear(ctx, year)
	if err != nil || len(holidays) == 0 {
		static := StaticHolidays(year)
		if static == nil {
			if err == nil {
				err = fmt.Errorf("no holidays returned for %d", year)
			}
			return SyncResult{}, err
		}
		s.logger.Warn().Err(err).Int("year", year).Msg("holiday api unavailable, using built-in list")
		holidays, origin = static, OriginStatic
	}

	c := cacheFile{Year: year, Origin: origin, SyncedAt: s.now(), Holidays: holidays}
	if err := storage.WriteJSON(s.cachePath(year), c); err != nil {
		return SyncResult{}, err
	}
	s.logger.Info().Int("year", year).Str("origin", origin).Int("count", len(holidays)).Msg("holidays synced")
	return SyncResult{Year: year, Origin: origin, Count: len(holidays), SyncedAt: c.SyncedAt}, nil
}

// Holidays returns the cached holidays of year without network access. It
// falls back to the built-in list and returns nil if neither exists.
func (s *Service) Holidays(year int) ([]Holiday, error) {
	c, err := s.loadCache(year)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c.Holidays, nil
	}
	return StaticHolidays(year), nil
}

// DaysOff returns the stored personal days off.
func (s *Service) DaysOff() ([]DayOff, error) {
	var list []DayOff
	if _, err := readJSON(s.daysOffPath(), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveDaysOff replaces the stored personal days off.
func (s *Service) SaveDaysOff(list []DayOff) error {
	if list == nil {
		list = []DayOff{}
	}
	return storage.WriteJSON(s.daysOffPath(), list)
}

// Calendar builds a Calendar covering the given years.
func (s *Service) Calendar(years ...int) (Calendar, error) {
	var all []Holiday
	seen := map[int]bool{}
	for _, y := range years {
		if seen[y] {
			continue
		}
		seen[y] = true
		h, err := s.Holidays(y)
		if err != nil {
			return Calendar{}, err
		}
		all = append(all, h...)
	}
	daysOff, err := s.DaysOff()
	if err != nil {
		return Calendar{}, err
	}
	return NewCalendar(all, daysOff), nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt JSON in %s: %w", path, err)
	}
	return true, nil
}
