// file: internals/helpers/dbtime/tod.go
package dbtime

import (
	"encoding/json"
	"strings"
	"time"
)

// Tod: jam dalam sehari (HH:MM), dipakai sel laporan presence.
type Tod struct{ time.Time }

// From: ambil HH:mm dari t di zona loc, buang tanggal
func From(t time.Time, loc *time.Location) Tod {
	if loc == nil {
		loc = DefaultLocation()
	}
	lt := t.In(loc)
	return Tod{Time: time.Date(0, 1, 1, lt.Hour(), lt.Minute(), 0, 0, time.UTC)}
}

// Parse: "HH:mm[:ss]"
func Parse(s string) (Tod, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return Tod{}, err
	}
	return Tod{Time: tt}, nil
}

func (t Tod) String() string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

func (t Tod) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
