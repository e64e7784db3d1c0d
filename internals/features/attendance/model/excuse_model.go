// internals/features/attendance/model/excuse_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ExcuseCategory string

const (
	ExcuseCategoryMedicalLeave ExcuseCategory = "MEDICAL_LEAVE"
	ExcuseCategoryCommission   ExcuseCategory = "COMMISSION"
	ExcuseCategoryPermit       ExcuseCategory = "PERMIT"
	ExcuseCategoryOther        ExcuseCategory = "OTHER"
)

var ExcuseCategories = []ExcuseCategory{
	ExcuseCategoryMedicalLeave,
	ExcuseCategoryCommission,
	ExcuseCategoryPermit,
	ExcuseCategoryOther,
}

// Label untuk legend laporan
var excuseCategoryLabels = map[ExcuseCategory]string{
	ExcuseCategoryMedicalLeave: "Descanso médico",
	ExcuseCategoryCommission:   "Comisión de servicio",
	ExcuseCategoryPermit:       "Permiso",
	ExcuseCategoryOther:        "Otro",
}

func (c ExcuseCategory) Label() string {
	if l, ok := excuseCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseExcuseCategory menerima juga alias "ASSIGNMENT"
func ParseExcuseCategory(s string) (ExcuseCategory, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "ASSIGNMENT" {
		return ExcuseCategoryCommission, true
	}
	for _, c := range ExcuseCategories {
		if string(c) == v {
			return c, true
		}
	}
	return "", false
}

// ExcuseEventModel: ketidakhadiran yang dijustifikasi. Unik per (person, day).
type ExcuseEventModel struct {
	ExcuseID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:excuse_id" json:"excuse_id"`

	ExcusePersonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_excuse_person_day,priority:1;column:excuse_person_id" json:"excuse_person_id"`
	ExcuseDay      time.Time `gorm:"type:date;not null;uniqueIndex:uq_excuse_person_day,priority:2;index:idx_excuse_day;column:excuse_day" json:"excuse_day"`

	ExcuseCategory      ExcuseCategory `gorm:"type:varchar(20);not null;column:excuse_category" json:"excuse_category"`
	ExcuseDetail        string         `gorm:"type:text;not null;default:'';column:excuse_detail" json:"excuse_detail"`
	ExcuseAttachmentRef *string        `gorm:"type:text;column:excuse_attachment_ref" json:"excuse_attachment_ref,omitempty"`

	ExcuseCreatedBy string    `gorm:"type:varchar(150);not null;column:excuse_created_by" json:"excuse_created_by"`
	ExcuseCreatedAt time.Time `gorm:"type:timestamptz;not null;column:excuse_created_at" json:"excuse_created_at"`
	ExcuseUpdatedBy string    `gorm:"type:varchar(150);not null;column:excuse_updated_by" json:"excuse_updated_by"`
	ExcuseUpdatedAt time.Time `gorm:"type:timestamptz;not null;column:excuse_updated_at" json:"excuse_updated_at"`

	Person *PersonModel `gorm:"foreignKey:ExcusePersonID;references:PersonID" json:"person,omitempty"`
}

func (ExcuseEventModel) TableName() string {
	return "attendance_excuses"
}
