package entity

import (
	"testing"
	"time"
)

func TestDueAtMatchesLocalWeekdayAndHour(t *testing.T) {
	pref := &NotificationPreference{
		Weekday:  0, // Sunday
		Hour:     9,
		Timezone: "Asia/Riyadh",
	}

	riyadh, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		t.Fatalf("load Asia/Riyadh: %v", err)
	}

	// 2026-08-30 is a Sunday.
	sunday9 := time.Date(2026, 8, 30, 9, 0, 0, 0, riyadh)
	if !pref.DueAt(sunday9) {
		t.Error("Sunday 09:00 Riyadh should match weekday 0 hour 9")
	}

	// Same instant expressed in UTC (Riyadh is UTC+3) still matches.
	if !pref.DueAt(sunday9.UTC()) {
		t.Error("the same instant in UTC should still match")
	}

	if pref.DueAt(time.Date(2026, 8, 30, 9, 1, 0, 0, riyadh)) {
		t.Error("09:01 must not match")
	}
	if pref.DueAt(time.Date(2026, 8, 30, 10, 0, 0, 0, riyadh)) {
		t.Error("10:00 must not match hour 9")
	}
	// 2026-08-31 is a Monday.
	if pref.DueAt(time.Date(2026, 8, 31, 9, 0, 0, 0, riyadh)) {
		t.Error("Monday must not match weekday 0")
	}
}

func TestDueAtUnknownTimezoneNeverMatches(t *testing.T) {
	pref := &NotificationPreference{Weekday: 0, Hour: 9, Timezone: "Mars/Olympus"}
	if pref.DueAt(time.Now()) {
		t.Error("unparseable timezone must never match")
	}
}
