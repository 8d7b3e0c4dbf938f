package watch

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"billwatch/internal/config"
	"billwatch/internal/model"
	"billwatch/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "billwatch.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := New(Config{
		Settings: config.DefaultConfig(),
		Interval: time.Minute,
		Addr:     "127.0.0.1:0",
	}, st, nil)
	return svc, st
}

func TestRunOncePopulatesStatus(t *testing.T) {
	svc, st := newTestService(t)

	a, err := st.CreateAccount(model.Account{Name: "Checking", BalanceCurrent: 500})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	_, err = st.CreateBill(model.Bill{
		Name:      "Rent",
		Amount:    900,
		DueDate:   time.Now().AddDate(0, 0, 5),
		AccountID: a.ID,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	status := svc.snapshotStatus()
	if status.RunCount != 1 {
		t.Fatalf("run count = %d, want 1", status.RunCount)
	}
	if status.LastError != "" {
		t.Fatalf("last error = %q, want empty", status.LastError)
	}
	if status.Scheduled == 0 {
		t.Fatal("expected at least one reminder scheduled")
	}
	// 500 balance against a 900 bill in the 14-day window.
	if status.AggregateSafe != -400 {
		t.Fatalf("aggregate safe-to-spend = %.2f, want -400.00", status.AggregateSafe)
	}
	if len(status.Overspent) != 1 || status.Overspent[0] != "Checking" {
		t.Fatalf("overspent = %v, want [Checking]", status.Overspent)
	}
}

func TestStatusEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	rec := httptest.NewRecorder()
	svc.handleStatus(rec, httptest.NewRequest("GET", "/v1/status", nil))
	if rec.Code != 200 {
		t.Fatalf("status code = %d", rec.Code)
	}

	var got Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got.RunCount != 1 {
		t.Fatalf("run count = %d, want 1", got.RunCount)
	}
	if got.IntervalSec != 60 {
		t.Fatalf("interval = %d, want 60", got.IntervalSec)
	}
}

func TestRemindersEndpoint(t *testing.T) {
	svc, st := newTestService(t)

	a, _ := st.CreateAccount(model.Account{Name: "Checking", BalanceCurrent: 5000})
	_, err := st.CreateBill(model.Bill{
		Name:      "Rent",
		Amount:    900,
		DueDate:   time.Now().AddDate(0, 0, 10),
		Repeat:    model.RepeatMonthly,
		AccountID: a.ID,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	rec := httptest.NewRecorder()
	svc.handleReminders(rec, httptest.NewRequest("GET", "/v1/reminders", nil))
	if rec.Code != 200 {
		t.Fatalf("status code = %d", rec.Code)
	}

	var got []model.Reminder
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode reminders: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected pending reminders for the monthly bill")
	}
	for _, r := range got {
		if r.Marker != "billwatch" {
			t.Fatalf("reminder %d carries marker %q", r.ID, r.Marker)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	rec := httptest.NewRecorder()
	svc.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != 200 || rec.Body.String() != "ok\n" {
		t.Fatalf("health = (%d, %q)", rec.Code, rec.Body.String())
	}
}
