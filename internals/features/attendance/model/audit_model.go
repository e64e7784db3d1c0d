// internals/features/attendance/model/audit_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditOutcome string

const (
	AuditCreated         AuditOutcome = "created"
	AuditAlreadyRecorded AuditOutcome = "already_recorded"
	AuditRejected        AuditOutcome = "rejected"
	AuditFailed          AuditOutcome = "failed"
	AuditAmended         AuditOutcome = "amended"
)

// AuditLogModel: jejak setiap percobaan submit (best-effort, tidak boleh
// menggagalkan operasi utama).
type AuditLogModel struct {
	AuditID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:audit_id" json:"audit_id"`

	AuditOperation string       `gorm:"type:varchar(40);not null;index:idx_audit_operation;column:audit_operation" json:"audit_operation"`
	AuditOutcome   AuditOutcome `gorm:"type:varchar(20);not null;column:audit_outcome" json:"audit_outcome"`
	AuditActor     string       `gorm:"type:varchar(150);not null;column:audit_actor" json:"audit_actor"`

	AuditPersonID *uuid.UUID `gorm:"type:uuid;column:audit_person_id" json:"audit_person_id,omitempty"`
	AuditDay      *time.Time `gorm:"type:date;column:audit_day" json:"audit_day,omitempty"`
	AuditIP       *string    `gorm:"type:varchar(64);column:audit_ip" json:"audit_ip,omitempty"`

	AuditDetail datatypes.JSONMap `gorm:"type:jsonb;column:audit_detail" json:"audit_detail,omitempty"`

	AuditCreatedAt time.Time `gorm:"column:audit_created_at;autoCreateTime;index:idx_audit_created_at,sort:desc" json:"audit_created_at"`
}

func (AuditLogModel) TableName() string {
	return "attendance_audit_logs"
}
