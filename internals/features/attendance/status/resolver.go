// Package status: resolusi status harian (PRESENT / EXCUSED / ABSENT).
// Murni, tanpa I/O.
package status

import (
	"time"

	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/helpers/dbtime"
)

type Kind string

const (
	Present Kind = "PRESENT"
	Excused Kind = "EXCUSED"
	Absent  Kind = "ABSENT"
)

// DayStatus: hasil turunan, tidak pernah disimpan.
type DayStatus struct {
	Kind Kind `json:"status"`

	// PRESENT
	RecordedAt *time.Time            `json:"recorded_at,omitempty"`
	Time       *dbtime.Tod           `json:"time,omitempty"`
	Channel    model.PresenceChannel `json:"channel,omitempty"`

	// EXCUSED
	Category model.ExcuseCategory `json:"category,omitempty"`
	Label    string               `json:"label,omitempty"`
	Detail   string               `json:"detail,omitempty"`
}

// Resolve: presence > excuse > absent. Total & deterministik;
// (presence, excuse) bersamaan tetap PRESENT.
func Resolve(presence *model.PresenceEventModel, excuse *model.ExcuseEventModel, loc *time.Location) DayStatus {
	switch {
	case presence != nil:
		at := presence.PresenceRecordedAt
		tod := dbtime.From(at, loc)
		return DayStatus{
			Kind:       Present,
			RecordedAt: &at,
			Time:       &tod,
			Channel:    presence.PresenceChannel,
		}
	case excuse != nil:
		return DayStatus{
			Kind:     Excused,
			Category: excuse.ExcuseCategory,
			Label:    excuse.ExcuseCategory.Label(),
			Detail:   excuse.ExcuseDetail,
		}
	default:
		return DayStatus{Kind: Absent}
	}
}

// Cell: teks ringkas untuk sel laporan ("08:15", "MEDICAL_LEAVE", "").
func (s DayStatus) Cell() string {
	switch s.Kind {
	case Present:
		if s.Time != nil {
			return s.Time.String()
		}
	case Excused:
		return string(s.Category)
	}
	return ""
}
