// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strings"
	"sync"
	"time"
)

const DayLayout = "2006-01-02"

var (
	defaultMu  sync.RWMutex
	defaultLoc = loadOr("America/Lima", time.UTC)
)

func loadOr(name string, fallback *time.Location) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return fallback
}

// SetDefaultLocation dipanggil sekali dari main (APP_TIMEZONE).
func SetDefaultLocation(name string) *time.Location {
	loc := loadOr(strings.TrimSpace(name), time.UTC)
	defaultMu.Lock()
	defaultLoc = loc
	defaultMu.Unlock()
	return loc
}

func DefaultLocation() *time.Location {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLoc
}

// DayOf: tanggal kalender t di zona loc, dinormalisasi ke 00:00 UTC
// (representasi kolom DATE).
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = DefaultLocation()
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDay buang komponen jam dari tanggal yang sudah "date-only".
func NormalizeDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalMidnight: 00:00 waktu lokal untuk hari tsb (effective timestamp excuse).
func LocalMidnight(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = DefaultLocation()
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDay: "YYYY-MM-DD" → day (UTC midnight)
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDay(t), nil
}

func FormatDay(day time.Time) string {
	return day.Format(DayLayout)
}

// DaysBetween: semua hari di [from, to] inklusif. Kosong kalau from > to.
func DaysBetween(from, to time.Time) []time.Time {
	from, to = NormalizeDay(from), NormalizeDay(to)
	if from.After(to) {
		return nil
	}
	out := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// WorkWeek: Senin 00:00 s/d Jumat 23:59:59 minggu berjalan (waktu lokal).
func WorkWeek(now time.Time, loc *time.Location) (monday, fridayEnd time.Time) {
	if loc == nil {
		loc = DefaultLocation()
	}
	now = now.In(loc)
	offset := (int(now.Weekday()) + 6) % 7 // Senin = 0
	y, m, d := now.AddDate(0, 0, -offset).Date()
	monday = time.Date(y, m, d, 0, 0, 0, 0, loc)
	fridayEnd = monday.AddDate(0, 0, 5).Add(-time.Nanosecond)
	return monday, fridayEnd
}
