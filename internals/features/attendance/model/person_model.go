// internals/features/attendance/model/person_model.go
package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type PersonCategory string

const (
	PersonCategoryAppointed  PersonCategory = "NOMBRADO"
	PersonCategoryContracted PersonCategory = "CONTRATADO"
)

// Kategori dipakai untuk filter & total agregat di laporan
var PersonCategories = []PersonCategory{PersonCategoryAppointed, PersonCategoryContracted}

func ParsePersonCategory(s string) (PersonCategory, bool) {
	v := PersonCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range PersonCategories {
		if c == v {
			return c, true
		}
	}
	return "", false
}

type PersonModel struct {
	PersonID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:person_id" json:"person_id"`

	// DNI 8 digit (unik)
	PersonNationalID string  `gorm:"type:varchar(8);not null;uniqueIndex:uq_person_national_id;column:person_national_id" json:"person_national_id"`
	PersonCode       *string `gorm:"type:varchar(20);column:person_code" json:"person_code,omitempty"`

	PersonLastNames  string         `gorm:"type:varchar(120);not null;column:person_last_names" json:"person_last_names"`
	PersonFirstNames string         `gorm:"type:varchar(120);not null;column:person_first_names" json:"person_first_names"`
	PersonCategory   PersonCategory `gorm:"type:varchar(20);not null;index:idx_person_category;column:person_category" json:"person_category"`
	PersonEmail      *string        `gorm:"type:varchar(160);column:person_email" json:"person_email,omitempty"`

	// Gabungan dni/kode/nama yang sudah di-Fold, untuk LIKE tanpa ekstensi unaccent
	PersonSearch string `gorm:"type:text;not null;default:'';column:person_search" json:"-"`

	PersonCreatedAt time.Time `gorm:"column:person_created_at;autoCreateTime" json:"person_created_at"`
	PersonUpdatedAt time.Time `gorm:"column:person_updated_at;autoUpdateTime" json:"person_updated_at"`
}

func (PersonModel) TableName() string {
	return "attendance_persons"
}

// BeforeSave: jaga person_search tetap sinkron
func (p *PersonModel) BeforeSave(tx *gorm.DB) error {
	p.PersonSearch = p.SearchText()
	return nil
}

func (p PersonModel) SearchText() string {
	code := ""
	if p.PersonCode != nil {
		code = *p.PersonCode
	}
	return Fold(strings.Join([]string{p.PersonNationalID, code, p.PersonLastNames, p.PersonFirstNames}, " "))
}

// DisplayName: "APELLIDOS NOMBRES"
func (p PersonModel) DisplayName() string {
	return strings.TrimSpace(p.PersonLastNames + " " + p.PersonFirstNames)
}

// Matches: pencarian bebas (dni / kode / nama), case & accent insensitive.
// Sama persis dengan filter SQL: person_search LIKE %q%.
func (p PersonModel) Matches(q string) bool {
	q = Fold(q)
	if q == "" {
		return true
	}
	return strings.Contains(p.SearchText(), q)
}

// Fold: lowercase + buang diakritik (Núñez → nunez)
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
