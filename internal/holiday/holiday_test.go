package holiday_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
)

const objectPayload = `{"code":0,"holiday":{
	"01-01":{"holiday":true,"name":"New Year","date":"2027-01-01"},
	"02-06":{"holiday":false,"name":"Make-up day","date":"2027-02-06"},
	"05-01":{"holiday":true,"name":"Labour Day"}
}}`

const listPayload = `{"code":0,"holiday":[
	{"holiday":true,"name":"New Year","date":"2027-01-01"},
	{"holiday":false,"name":"Make-up day","date":"2027-02-06"}
]}`

func newServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchYear(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []holiday.Holiday
	}{
		{
			name: "object keyed by day",
			body: objectPayload,
			want: []holiday.Holiday{
				{Date: "2027-01-01", Name: "New Year"},
				{Date: "2027-05-01", Name: "Labour Day"},
			},
		},
		{
			name: "list of days",
			body: listPayload,
			want: []holiday.Holiday{{Date: "2027-01-01", Name: "New Year"}},
		},
		{
			name: "no holidays",
			body: `{"code":0,"holiday":null}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, tt.body, nil)
			got, err := holiday.NewClient(srv.URL).FetchYear(context.Background(), 2027)
			if err != nil {
				t.Fatalf("FetchYear: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FetchYear = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FetchYear[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFetchYearErrors(t *testing.T) {
	srv := newServer(t, http.StatusInternalServerError, `{}`, nil)
	if _, err := holiday.NewClient(srv.URL).FetchYear(context.Background(), 2027); err == nil {
		t.Error("expected error for HTTP 500")
	}
	srv = newServer(t, http.StatusOK, `{"code":-1}`, nil)
	if _, err := holiday.NewClient(srv.URL).FetchYear(context.Background(), 2027); err == nil {
		t.Error("expected error for non-zero code")
	}
}

func newService(t *testing.T, url string, now time.Time) *holiday.Service {
	t.Helper()
	svc := holiday.NewService(holiday.NewClient(url), t.TempDir(), zerolog.Nop())
	svc.SetClock(func() time.Time { return now })
	return svc
}

func TestSyncUsesMonthlyCache(t *testing.T) {
	var hits int32
	srv := newServer(t, http.StatusOK, objectPayload, &hits)
	now := time.Date(2027, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newService(t, srv.URL, now)

	res, err := svc.Sync(context.Background(), 2027, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Origin != holiday.OriginAPI || res.Count != 2 {
		t.Errorf("first Sync = %+v, want api with 2 holidays", res)
	}

	res, err = svc.Sync(context.Background(), 2027, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Origin != holiday.OriginCache {
		t.Errorf("second Sync origin = %q, want cache", res.Origin)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("API hits = %d, want 1", atomic.LoadInt32(&hits))
	}

	svc.SetClock(func() time.Time { return now.AddDate(0, 1, 0) })
	res, err = svc.Sync(context.Background(), 2027, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Origin != holiday.OriginAPI || atomic.LoadInt32(&hits) != 2 {
		t.Errorf("Sync in next month = %+v after %d hits, want a fresh API call", res, atomic.LoadInt32(&hits))
	}

	if _, err := svc.Sync(context.Background(), 2027, true); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("forced Sync hits = %d, want 3", atomic.LoadInt32(&hits))
	}
}

func TestSyncFallsBackToStatic(t *testing.T) {
	srv := newServer(t, http.StatusBadGateway, `oops`, nil)
	svc := newService(t, srv.URL, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	res, err := svc.Sync(context.Background(), 2026, false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Origin != holiday.OriginStatic || res.Count != len(holiday.StaticHolidays(2026)) {
		t.Errorf("Sync = %+v, want static fallback", res)
	}

	if _, err := svc.Sync(context.Background(), 2031, false); err == nil {
		t.Error("expected error for a year without built-in holidays")
	}
}

func TestSyncEmptyAnswerFallsBack(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"code":0,"holiday":{}}`, nil)
	svc := newService(t, srv.URL, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	res, err := svc.Sync(context.Background(), 2026, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Origin != holiday.OriginStatic {
		t.Errorf("Origin = %q, want static", res.Origin)
	}
}

func TestCalendar(t *testing.T) {
	srv := newServer(t, http.StatusOK, objectPayload, nil)
	svc := newService(t, srv.URL, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	if err := svc.SaveDaysOff([]holiday.DayOff{{Date: "2026-03-02", Reason: "vacation", Source: holiday.SourceManual}}); err != nil {
		t.Fatal(err)
	}
	cal, err := svc.Calendar(2026, 2026)
	if err != nil {
		t.Fatal(err)
	}
	if !cal.IsOff("2026-02-23") {
		t.Error("2026-02-23 should be a built-in holiday")
	}
	if r, ok := cal.Reason("2026-03-02"); !ok || r != "vacation" {
		t.Errorf("Reason(2026-03-02) = %q, %v", r, ok)
	}
	dates := []string{"2026-02-23", "2026-02-24", "2026-02-25", "2026-03-02"}
	if n := cal.WorkDays(dates); n != 2 {
		t.Errorf("WorkDays = %d, want 2", n)
	}
}

func TestUpsertAndRemoveDayOff(t *testing.T) {
	var list []holiday.DayOff
	list, changed := holiday.UpsertDayOff(list, holiday.DayOff{Date: "2026-03-03", Reason: "a"})
	if !changed {
		t.Error("insert should report a change")
	}
	list, _ = holiday.UpsertDayOff(list, holiday.DayOff{Date: "2026-03-01", Reason: "b"})
	if list[0].Date != "2026-03-01" {
		t.Errorf("list not sorted: %+v", list)
	}
	if _, changed = holiday.UpsertDayOff(list, holiday.DayOff{Date: "2026-03-01", Reason: "b"}); changed {
		t.Error("identical upsert should not report a change")
	}
	list, changed = holiday.UpsertDayOff(list, holiday.DayOff{Date: "2026-03-01", Reason: "c"})
	if !changed || list[0].Reason != "c" {
		t.Errorf("update = %+v, %v", list, changed)
	}
	list, removed := holiday.RemoveDayOff(list, "2026-03-03")
	if !removed || len(list) != 1 {
		t.Errorf("RemoveDayOff = %+v, %v", list, removed)
	}
}
