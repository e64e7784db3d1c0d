// internals/features/attendance/model/presence_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PresenceChannel string

const (
	PresenceChannelScan   PresenceChannel = "SCAN"
	PresenceChannelManual PresenceChannel = "MANUAL"
)

func ParsePresenceChannel(s string) (PresenceChannel, bool) {
	switch PresenceChannel(strings.ToUpper(strings.TrimSpace(s))) {
	case PresenceChannelScan:
		return PresenceChannelScan, true
	case PresenceChannelManual:
		return PresenceChannelManual, true
	}
	return "", false
}

// PresenceEventModel: satu baris = orang ini hadir di hari ini.
// Unik per (person, day) → uq_presence_person_day.
type PresenceEventModel struct {
	PresenceID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:presence_id" json:"presence_id"`

	PresencePersonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_presence_person_day,priority:1;column:presence_person_id" json:"presence_person_id"`
	PresenceDay      time.Time `gorm:"type:date;not null;uniqueIndex:uq_presence_person_day,priority:2;index:idx_presence_day;column:presence_day" json:"presence_day"`

	PresenceRecordedAt time.Time       `gorm:"type:timestamptz;not null;index:idx_presence_recorded_at,sort:desc;column:presence_recorded_at" json:"presence_recorded_at"`
	PresenceChannel    PresenceChannel `gorm:"type:varchar(10);not null;column:presence_channel" json:"presence_channel"`

	PresenceSubmittedBy string  `gorm:"type:varchar(150);not null;column:presence_submitted_by" json:"presence_submitted_by"`
	PresenceIP          *string `gorm:"type:varchar(64);column:presence_ip" json:"presence_ip,omitempty"`
	PresenceUserAgent   *string `gorm:"type:text;column:presence_user_agent" json:"presence_user_agent,omitempty"`

	PresenceCreatedAt time.Time `gorm:"column:presence_created_at;autoCreateTime" json:"presence_created_at"`

	Person *PersonModel `gorm:"foreignKey:PresencePersonID;references:PersonID" json:"person,omitempty"`
}

func (PresenceEventModel) TableName() string {
	return "attendance_presences"
}
