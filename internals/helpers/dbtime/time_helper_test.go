package dbtime

import (
	"testing"
	"time"
)

var lima = time.FixedZone("PET", -5*3600)

func TestDayOfUsesLocalCalendar(t *testing.T) {
	// 02:30 UTC tanggal 5 masih tanggal 4 di Lima
	got := DayOf(time.Date(2025, 3, 5, 2, 30, 0, 0, time.UTC), lima)
	want := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DayOf=%v want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	days := DaysBetween(from, to)
	if len(days) != 4 || FormatDay(days[2]) != "2025-03-01" {
		t.Fatalf("days=%v", days)
	}
	if DaysBetween(to, from) != nil {
		t.Fatalf("reversed range should be empty")
	}
}

func TestWorkWeek(t *testing.T) {
	cases := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, 3, 4, 8, 0, 0, 0, lima), "2025-03-03"},  // selasa
		{time.Date(2025, 3, 3, 0, 0, 0, 0, lima), "2025-03-03"},  // senin 00:00
		{time.Date(2025, 3, 9, 23, 0, 0, 0, lima), "2025-03-03"}, // minggu
	}
	for _, tc := range cases {
		mon, fri := WorkWeek(tc.now, lima)
		if mon.Format(DayLayout) != tc.want {
			t.Fatalf("WorkWeek(%v) monday=%v want %s", tc.now, mon, tc.want)
		}
		if fri.Weekday() != time.Friday || fri.Hour() != 23 {
			t.Fatalf("fridayEnd=%v", fri)
		}
	}
}

func TestTodRoundTrip(t *testing.T) {
	tod := From(time.Date(2025, 3, 4, 13, 15, 42, 0, time.UTC), lima)
	if tod.String() != "08:15" {
		t.Fatalf("tod=%s", tod)
	}
	b, err := tod.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Tod
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "08:15" {
		t.Fatalf("back=%s", back)
	}
	if _, err := ParseDay("04/03/2025"); err == nil {
		t.Fatalf("expected parse error")
	}
}
