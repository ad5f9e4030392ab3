package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/storage"
)

func strp(s string) *string { return &s }

func fp(f float64) *float64 { return &f }

// stores returns one instance of every backend, each on a fresh directory.
func stores(t *testing.T) map[string]storage.Store {
	t.Helper()
	base := t.TempDir()
	sq, err := storage.Open(storage.BackendSQLite, filepath.Join(base, "sql"), "")
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	files, err := storage.Open(storage.BackendFiles, filepath.Join(base, "files"), "")
	if err != nil {
		t.Fatalf("Open files: %v", err)
	}
	t.Cleanup(func() {
		sq.Close()
		files.Close()
	})
	return map[string]storage.Store{"files": files, "sqlite": sq}
}

func completedRecord(date string) model.Record {
	return model.Record{
		ID:             date + "-abcde",
		Date:           date,
		CheckInTime:    "08:00",
		CheckOutTime:   strp("18:00"),
		EffectiveHours: fp(8),
		Overtime:       fp(0),
	}
}

func TestLoadDayNotExist(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := s.LoadDay("2026-02-27")
			if err != nil {
				t.Fatalf("LoadDay on missing day: %v", err)
			}
			if rec != nil {
				t.Errorf("LoadDay = %+v, want nil", rec)
			}
		})
	}
}

func TestSaveRecordsAndLoadDay(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := completedRecord("2026-02-27")
			rec.Notes = "release day"
			if err := s.SaveRecords([]model.Record{rec}); err != nil {
				t.Fatalf("SaveRecords: %v", err)
			}
			loaded, err := s.LoadDay("2026-02-27")
			if err != nil {
				t.Fatalf("LoadDay after save: %v", err)
			}
			if loaded == nil {
				t.Fatal("LoadDay = nil after save")
			}
			if loaded.Notes != rec.Notes {
				t.Errorf("Notes = %q, want %q", loaded.Notes, rec.Notes)
			}
			if loaded.EffectiveHours == nil || *loaded.EffectiveHours != 8 {
				t.Errorf("EffectiveHours = %v, want 8", loaded.EffectiveHours)
			}
		})
	}
}

func TestSaveRecordsSkipsNewEmptyDays(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveRecords([]model.Record{model.NewRecord("x", "2026-03-02")}); err != nil {
				t.Fatal(err)
			}
			rec, err := s.LoadDay("2026-03-02")
			if err != nil {
				t.Fatal(err)
			}
			if rec != nil {
				t.Errorf("empty record was stored: %+v", rec)
			}
		})
	}
}

func TestSaveRecordsOverwritesClearedDay(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := completedRecord("2026-03-02")
			if err := s.SaveRecords([]model.Record{rec}); err != nil {
				t.Fatal(err)
			}
			cleared := model.NewRecord(rec.ID, rec.Date)
			if err := s.SaveRecords([]model.Record{cleared}); err != nil {
				t.Fatal(err)
			}
			got, err := s.LoadDay("2026-03-02")
			if err != nil {
				t.Fatal(err)
			}
			if got == nil || got.CheckInTime != "" {
				t.Errorf("LoadDay = %+v, want cleared record", got)
			}
		})
	}
}

func TestSaveRecordsIdempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			recs := []model.Record{completedRecord("2026-02-23"), completedRecord("2026-02-24")}
			for i := 0; i < 2; i++ {
				if err := s.SaveRecords(recs); err != nil {
					t.Fatal(err)
				}
			}
			all, err := s.LoadAll()
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 {
				t.Errorf("LoadAll = %d records, want 2", len(all))
			}
		})
	}
}

func TestLoadRange(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			recs := []model.Record{
				completedRecord("2026-02-20"),
				completedRecord("2026-02-23"),
				completedRecord("2026-02-25"),
				completedRecord("2026-03-02"),
			}
			if err := s.SaveRecords(recs); err != nil {
				t.Fatal(err)
			}
			got, err := s.LoadRange("2026-02-23", "2026-03-01")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 || got[0].Date != "2026-02-23" || got[1].Date != "2026-02-25" {
				t.Errorf("LoadRange = %+v, want 2026-02-23 and 2026-02-25", got)
			}
		})
	}
}

func TestDeleteBefore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			recs := []model.Record{
				completedRecord("2025-12-31"),
				completedRecord("2026-01-15"),
				completedRecord("2026-02-27"),
			}
			if err := s.SaveRecords(recs); err != nil {
				t.Fatal(err)
			}
			n, err := s.DeleteBefore("2026-02-01")
			if err != nil {
				t.Fatal(err)
			}
			if n != 2 {
				t.Errorf("DeleteBefore = %d, want 2", n)
			}
			all, err := s.LoadAll()
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 || all[0].Date != "2026-02-27" {
				t.Errorf("LoadAll after delete = %+v", all)
			}
		})
	}
}

func TestActiveRange(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			r, err := s.LoadActiveRange()
			if err != nil {
				t.Fatal(err)
			}
			if r != nil {
				t.Fatalf("LoadActiveRange on empty store = %+v, want nil", r)
			}
			want := model.ActiveRange{Start: "2026-02-23", End: "2026-02-27", FilterStart: "2026-02-24", FilterEnd: "2026-02-26"}
			if err := s.SaveActiveRange(want); err != nil {
				t.Fatal(err)
			}
			r, err = s.LoadActiveRange()
			if err != nil {
				t.Fatal(err)
			}
			if r == nil || r.Start != want.Start || r.End != want.End || r.FilterStart != want.FilterStart || r.FilterEnd != want.FilterEnd {
				t.Errorf("LoadActiveRange = %+v, want %+v", r, want)
			}
			if r.UpdatedAt.IsZero() {
				t.Error("UpdatedAt not set")
			}
		})
	}
}

func TestFileStoreCorruptDay(t *testing.T) {
	// A corrupt JSON file is backed up and returns an error.
	base := t.TempDir()
	s := storage.NewFileStore(base)

	path := filepath.Join(base, "2026", "02", "27.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadDay("2026-02-27"); err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err := os.Stat(path + ".corrupt"); os.IsNotExist(err) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	base := t.TempDir()
	s := storage.NewFileStore(base)
	if err := s.SaveRecords([]model.Record{completedRecord("2026-02-27")}); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "holidays"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "holidays", "2026.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	all, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("LoadAll = %d records, want 1", len(all))
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := storage.Open("mongo", t.TempDir(), ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestFileStoreSaveRecordsWritesAllOrNothing(t *testing.T) {
	base := t.TempDir()
	s := storage.NewFileStore(base)

	// A directory in place of the second day's temp file makes its write fail.
	blocker := filepath.Join(base, "2026", "02", "24.json.tmp")
	if err := os.MkdirAll(blocker, 0o700); err != nil {
		t.Fatal(err)
	}

	recs := []model.Record{completedRecord("2026-02-23"), completedRecord("2026-02-24")}
	if err := s.SaveRecords(recs); err == nil {
		t.Fatal("expected error when a day cannot be written")
	}
	got, err := s.LoadDay("2026-02-23")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("first day was saved despite the failed batch: %+v", got)
	}
	if _, err := os.Stat(filepath.Join(base, "2026", "02", "23.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("staged temp file left behind: %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	if err := storage.WriteJSON(path, map[string]int{"days": 7}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "{\n  \"days\": 7\n}"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}
