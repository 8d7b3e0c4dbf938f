package config

import (
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("config should not exist in a fresh dir")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with no file: %v", err)
	}
	if cfg.Budget.SpendWindowDays != 14 || !cfg.Notifications.Enabled {
		t.Fatalf("missing file did not yield defaults: %+v", cfg)
	}

	cfg.Budget.SpendWindowDays = 21
	cfg.Budget.BufferMode = "fixed"
	cfg.Budget.BufferValue = 50
	cfg.Notifications.QuietHoursStart = "22:00"
	cfg.Notifications.QuietHoursEnd = "07:00"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !Exists() {
		t.Fatal("config file missing after save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Budget.SpendWindowDays != 21 || got.Budget.BufferValue != 50 {
		t.Fatalf("budget did not round trip: %+v", got.Budget)
	}
	if got.Notifications.QuietHoursStart != "22:00" {
		t.Fatalf("quiet hours did not round trip: %+v", got.Notifications)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	td, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if td.Hour != 9 || td.Minute != 30 {
		t.Fatalf("parsed %+v, want 09:30", td)
	}

	for _, bad := range []string{"", "25:00", "12:75", "noon"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("ParseTimeOfDay(%q) accepted invalid input", bad)
		}
	}
}

func TestTimeOfDayOn(t *testing.T) {
	td := TimeOfDay{Hour: 9, Minute: 15}
	date := time.Date(2026, time.September, 20, 17, 45, 12, 0, time.Local)

	got := td.On(date)
	want := time.Date(2026, time.September, 20, 9, 15, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("On = %v, want %v", got, want)
	}
}

func TestReminderTimeFallback(t *testing.T) {
	n := NotificationsConfig{ReminderTime: "garbage"}
	if td := n.ReminderTimeOfDay(); td.Hour != 9 || td.Minute != 0 {
		t.Fatalf("malformed reminder time fell back to %+v, want 09:00", td)
	}

	n = NotificationsConfig{QuietHoursStart: "22:00"}
	if _, _, ok := n.QuietHours(); ok {
		t.Fatal("quiet hours should need both bounds")
	}
}
