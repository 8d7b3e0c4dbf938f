package schedule

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"billwatch/internal/config"
	"billwatch/internal/model"
)

var testNow = time.Date(2026, time.August, 10, 11, 0, 0, 0, time.Local)

// fakeNotifier is an in-memory notification registry.
type fakeNotifier struct {
	reminders   map[uint32]model.Reminder
	failPending bool
	failCancel  bool
	failSubmit  bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{reminders: make(map[uint32]model.Reminder)}
}

func (f *fakeNotifier) Pending(context.Context) ([]model.Reminder, error) {
	if f.failPending {
		return nil, errors.New("pending unavailable")
	}
	out := make([]model.Reminder, 0, len(f.reminders))
	for _, r := range f.reminders {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeNotifier) Cancel(_ context.Context, ids []uint32) error {
	if f.failCancel {
		return errors.New("cancel unavailable")
	}
	for _, id := range ids {
		delete(f.reminders, id)
	}
	return nil
}

func (f *fakeNotifier) Schedule(_ context.Context, reminders []model.Reminder) error {
	if f.failSubmit {
		return errors.New("schedule unavailable")
	}
	for _, r := range reminders {
		f.reminders[r.ID] = r
	}
	return nil
}

func (f *fakeNotifier) ids() []uint32 {
	out := make([]uint32, 0, len(f.reminders))
	for id := range f.reminders {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type memMarkers map[string]string

func (m memMarkers) GetMarker(key string) (string, error) { return m[key], nil }
func (m memMarkers) SetMarker(key, value string) error    { m[key] = value; return nil }

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Budget.SpendWindowDays = 14
	return cfg
}

func richAccount() model.Account {
	return model.Account{ID: "a1", Name: "Checking", BalanceCurrent: 10000, Type: model.AccountBank}
}

func monthlyBill(id, name string, dueInDays int, amount float64) model.Bill {
	return model.Bill{
		ID:        id,
		Name:      name,
		Amount:    amount,
		DueDate:   testNow.AddDate(0, 0, dueInDays),
		Repeat:    model.RepeatMonthly,
		AccountID: "a1",
		Status:    model.BillUnpaid,
	}
}

func TestRescheduleAll_PerBillReminders(t *testing.T) {
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, testConfig())

	bills := []model.Bill{monthlyBill("rent", "Rent", 10, 900)}
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow)
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}

	// Due on day 10 plus a pre-due three days before.
	if len(plan.Desired) != 2 {
		t.Fatalf("desired = %d reminders, want 2", len(plan.Desired))
	}

	pre, due := plan.Desired[0], plan.Desired[1]
	if !pre.FireAt.Before(due.FireAt) {
		t.Fatal("plan not sorted by fire time")
	}
	wantPre := time.Date(2026, time.August, 17, 9, 0, 0, 0, time.Local)
	if !pre.FireAt.Equal(wantPre) {
		t.Fatalf("pre-due fires at %v, want %v", pre.FireAt, wantPre)
	}
	wantDue := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.Local)
	if !due.FireAt.Equal(wantDue) {
		t.Fatalf("due fires at %v, want %v", due.FireAt, wantDue)
	}
}

func TestRescheduleAll_PreDueOnlyIfFuture(t *testing.T) {
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, testConfig())

	// Due in two days: the 3-day lead instant is already past.
	bills := []model.Bill{monthlyBill("net", "Internet", 2, 50)}
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow)
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}
	if len(plan.Desired) != 1 {
		t.Fatalf("desired = %d reminders, want only the due reminder", len(plan.Desired))
	}
}

func TestRescheduleAll_ExpiredOneOffGetsOverdue(t *testing.T) {
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, testConfig())

	expired := model.Bill{
		ID:        "tax",
		Name:      "Tax bill",
		Amount:    300,
		DueDate:   testNow.AddDate(0, 0, -4),
		Repeat:    model.RepeatNone,
		AccountID: "a1",
		Status:    model.BillUnpaid,
	}
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, []model.Bill{expired}, testNow)
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}
	if len(plan.Desired) != 1 {
		t.Fatalf("desired = %d reminders, want 1 overdue", len(plan.Desired))
	}
	want := time.Date(2026, time.August, 11, 9, 0, 0, 0, time.Local)
	if !plan.Desired[0].FireAt.Equal(want) {
		t.Fatalf("overdue fires at %v, want next morning %v", plan.Desired[0].FireAt, want)
	}
}

func TestRescheduleAll_Idempotent(t *testing.T) {
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, testConfig())

	accounts := []model.Account{richAccount()}
	bills := []model.Bill{
		monthlyBill("rent", "Rent", 10, 900),
		monthlyBill("net", "Internet", 5, 50),
	}

	if _, err := s.RescheduleAll(context.Background(), accounts, bills, testNow); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := notifier.ids()

	plan, err := s.RescheduleAll(context.Background(), accounts, bills, testNow)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := notifier.ids()

	if plan.Cancelled != len(first) {
		t.Fatalf("second run cancelled %d, want %d", plan.Cancelled, len(first))
	}
	if len(first) != len(second) {
		t.Fatalf("id set size changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("id set changed at %d: %d -> %d", i, first[i], second[i])
		}
	}
}

func TestRescheduleAll_IgnoresForeignReminders(t *testing.T) {
	notifier := newFakeNotifier()
	foreign := model.Reminder{ID: 7, Title: "someone else's", FireAt: testNow, Marker: "other-app"}
	notifier.reminders[foreign.ID] = foreign

	s := New(notifier, memMarkers{}, testConfig())
	if _, err := s.RescheduleAll(context.Background(), nil, nil, testNow); err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}

	if _, ok := notifier.reminders[foreign.ID]; !ok {
		t.Fatal("reconciliation cancelled a reminder it does not own")
	}
}

func TestRescheduleAll_QuietHours(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.QuietHoursStart = "22:00"
	cfg.Notifications.QuietHoursEnd = "07:00"
	cfg.Notifications.ReminderTime = "06:00" // inside the wrapped quiet range

	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, cfg)

	bills := []model.Bill{monthlyBill("rent", "Rent", 10, 900)}
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow)
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}

	for _, r := range plan.Desired {
		if r.FireAt.Hour() != 7 || r.FireAt.Minute() != 0 {
			t.Fatalf("reminder at %v not deferred to quiet-hours end", r.FireAt)
		}
	}
}

func TestRescheduleAll_QuietHoursEveningPushesToNextMorning(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.QuietHoursStart = "22:00"
	cfg.Notifications.QuietHoursEnd = "07:00"
	cfg.Notifications.ReminderTime = "23:00"

	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, cfg)

	bills := []model.Bill{monthlyBill("rent", "Rent", 10, 900)}
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow)
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}

	// 23:00 falls after quiet start; same-day 07:00 is not after it, so the
	// fire time rolls into the next morning.
	wantDue := time.Date(2026, time.August, 21, 7, 0, 0, 0, time.Local)
	due := plan.Desired[len(plan.Desired)-1]
	if !due.FireAt.Equal(wantDue) {
		t.Fatalf("due reminder at %v, want %v", due.FireAt, wantDue)
	}
}

func TestRescheduleAll_HorizonFilter(t *testing.T) {
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, testConfig())

	farOut := model.Bill{
		ID:        "ins",
		Name:      "Insurance",
		Amount:    400,
		DueDate:   testNow.AddDate(0, 0, 90),
		Repeat:    model.RepeatYearly,
		AccountID: "a1",
		Status:    model.BillUnpaid,
	}
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, []model.Bill{farOut}, testNow)
	if err != nil {
		t.Fatalf("RescheduleAll: %v", err)
	}
	if len(plan.Desired) != 0 {
		t.Fatalf("desired = %d reminders, want 0 beyond the 60-day horizon", len(plan.Desired))
	}
}

func TestRescheduleAll_OverspendMarkedOncePerDay(t *testing.T) {
	notifier := newFakeNotifier()
	markers := memMarkers{}
	s := New(notifier, markers, testConfig())

	broke := model.Account{ID: "a1", Name: "Checking", BalanceCurrent: 100, Type: model.AccountBank}
	bills := []model.Bill{monthlyBill("rent", "Rent", 5, 900)}

	plan, err := s.RescheduleAll(context.Background(), []model.Account{broke}, bills, testNow)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(plan.Overspent) != 1 {
		t.Fatalf("overspent accounts = %d, want 1", len(plan.Overspent))
	}
	if !hasOverspend(plan.Desired) {
		t.Fatal("first run should include the overspend alert")
	}
	if markers[overspendMarkerKey] != dayKey(testNow) {
		t.Fatalf("marker = %q, want %s", markers[overspendMarkerKey], dayKey(testNow))
	}
	todayID := overspendID(plan.Desired)

	// A rerun the same day keeps the still-pending alert under its same id.
	plan, err = s.RescheduleAll(context.Background(), []model.Account{broke}, bills, testNow)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !hasOverspend(plan.Desired) {
		t.Fatal("rerun dropped the pending overspend alert")
	}
	if overspendID(plan.Desired) != todayID {
		t.Fatalf("overspend id changed within the day: %d -> %d", todayID, overspendID(plan.Desired))
	}

	// A new day gets a fresh alert id.
	tomorrow := testNow.AddDate(0, 0, 1)
	plan, err = s.RescheduleAll(context.Background(), []model.Account{broke}, bills, tomorrow)
	if err != nil {
		t.Fatalf("next-day run: %v", err)
	}
	if !hasOverspend(plan.Desired) {
		t.Fatal("overspend alert missing on a new day")
	}
	if overspendID(plan.Desired) == todayID {
		t.Fatal("next-day alert reused the previous day's id")
	}
	if markers[overspendMarkerKey] != dayKey(tomorrow) {
		t.Fatalf("marker = %q, want %s", markers[overspendMarkerKey], dayKey(tomorrow))
	}
}

func TestRescheduleAll_IdempotentWithOverspend(t *testing.T) {
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, testConfig())

	broke := model.Account{ID: "a1", Name: "Checking", BalanceCurrent: 100, Type: model.AccountBank}
	bills := []model.Bill{
		monthlyBill("rent", "Rent", 10, 900),
		monthlyBill("net", "Internet", 5, 50),
	}

	if _, err := s.RescheduleAll(context.Background(), []model.Account{broke}, bills, testNow); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := notifier.ids()

	if _, err := s.RescheduleAll(context.Background(), []model.Account{broke}, bills, testNow); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := notifier.ids()

	if len(first) != len(second) {
		t.Fatalf("identifier set changed across identical runs: %v -> %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("identifier set changed at %d: %d -> %d", i, first[i], second[i])
		}
	}
}

func hasOverspend(reminders []model.Reminder) bool {
	for _, r := range reminders {
		if r.Title == "Spending is over budget" {
			return true
		}
	}
	return false
}

func overspendID(reminders []model.Reminder) uint32 {
	for _, r := range reminders {
		if r.Title == "Spending is over budget" {
			return r.ID
		}
	}
	return 0
}

func TestRescheduleAll_DisabledReconcilesToEmpty(t *testing.T) {
	cfg := testConfig()
	notifier := newFakeNotifier()
	s := New(notifier, memMarkers{}, cfg)

	bills := []model.Bill{monthlyBill("rent", "Rent", 10, 900)}
	if _, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if len(notifier.reminders) == 0 {
		t.Fatal("seed run registered nothing")
	}

	cfg.Notifications.Enabled = false
	s = New(notifier, memMarkers{}, cfg)
	plan, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow)
	if err != nil {
		t.Fatalf("disabled run: %v", err)
	}
	if len(plan.Desired) != 0 || len(notifier.reminders) != 0 {
		t.Fatalf("disabled run left %d reminders registered", len(notifier.reminders))
	}
}

func TestRescheduleAll_PlatformFailureIsSoft(t *testing.T) {
	notifier := newFakeNotifier()
	notifier.failSubmit = true
	s := New(notifier, memMarkers{}, testConfig())

	bills := []model.Bill{monthlyBill("rent", "Rent", 10, 900)}
	_, err := s.RescheduleAll(context.Background(), []model.Account{richAccount()}, bills, testNow)
	if err == nil {
		t.Fatal("submit failure should surface an error")
	}

	// No retry happened and the registry holds whatever the failed submit
	// left behind (nothing here): the inconsistency window is documented,
	// not rolled back.
	if len(notifier.reminders) != 0 {
		t.Fatalf("registry has %d reminders after failed submit", len(notifier.reminders))
	}
}

func TestReminderID_Deterministic(t *testing.T) {
	a := ReminderID("rent", "2026-08-20", "due")
	b := ReminderID("rent", "2026-08-20", "due")
	if a != b {
		t.Fatalf("same key hashed differently: %d vs %d", a, b)
	}
	if a == ReminderID("rent", "2026-08-20", "predue") {
		t.Fatal("different kinds should map to different identifiers")
	}
	if a == ReminderID("rent", "2026-09-20", "due") {
		t.Fatal("different dates should map to different identifiers")
	}
}
