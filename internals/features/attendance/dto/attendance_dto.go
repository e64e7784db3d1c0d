// file: internals/features/attendance/dto/attendance_dto.go
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/history"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/service"
	"absensi_backend/internals/features/attendance/status"
)

/* =========================================================
   PatchField (tri-state): absent | null | value
   ========================================================= */

type PatchField[T any] struct {
	Present bool
	Value   *T
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Present = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

/* =========================================================
   Requests: PRESENCE
   ========================================================= */

type ScanRequest struct {
	Code string `json:"code" form:"code" validate:"required,max=512"`
}

func (r *ScanRequest) Normalize() { r.Code = strings.TrimSpace(r.Code) }

func (r *ScanRequest) ToInput(ip, ua string) service.ScanInput {
	return service.ScanInput{Code: r.Code, Channel: model.PresenceChannelScan, IP: ip, UserAgent: ua}
}

type ManualRequest struct {
	Code       string     `json:"code" form:"code" validate:"required_without=NationalID,max=512"`
	NationalID string     `json:"national_id" form:"national_id" validate:"omitempty,len=8,numeric"`
	At         *time.Time `json:"at" form:"at"`
}

func (r *ManualRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.NationalID = strings.TrimSpace(r.NationalID)
}

func (r *ManualRequest) ToInput(ip, ua string) service.ScanInput {
	return service.ScanInput{
		Code:       r.Code,
		NationalID: r.NationalID,
		At:         r.At,
		Channel:    model.PresenceChannelManual,
		IP:         ip,
		UserAgent:  ua,
	}
}

/* =========================================================
   Requests: EXCUSE
   ========================================================= */

type CreateExcuseRequest struct {
	PersonID      string `json:"person_id" form:"person_id" validate:"omitempty,uuid"`
	NationalID    string `json:"national_id" form:"national_id" validate:"omitempty,len=8,numeric"`
	Day           string `json:"day" form:"day" validate:"required,datetime=2006-01-02"`
	Category      string `json:"category" form:"category" validate:"required,max=20"`
	Detail        string `json:"detail" form:"detail" validate:"max=1000"`
	AttachmentRef string `json:"attachment_ref" form:"attachment_ref" validate:"omitempty,uri,max=2048"`
}

func (r *CreateExcuseRequest) Normalize() {
	r.PersonID = strings.TrimSpace(r.PersonID)
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.Day = strings.TrimSpace(r.Day)
	r.Category = strings.ToUpper(strings.TrimSpace(r.Category))
	r.Detail = strings.TrimSpace(r.Detail)
	r.AttachmentRef = strings.TrimSpace(r.AttachmentRef)
}

func (r *CreateExcuseRequest) Validate(v *validator.Validate) error {
	return v.Struct(r)
}

// ToCommand: day sudah lolos validator (format YYYY-MM-DD).
func (r *CreateExcuseRequest) ToCommand(ip string) service.ExcuseCommand {
	day, _ := time.Parse("2006-01-02", r.Day)
	cmd := service.ExcuseCommand{
		NationalID:    r.NationalID,
		Day:           day,
		Category:      r.Category,
		Detail:        r.Detail,
		AttachmentRef: r.AttachmentRef,
		IP:            ip,
	}
	if id, err := uuid.Parse(r.PersonID); err == nil {
		cmd.PersonID = id
	}
	return cmd
}

type PatchExcuseRequest struct {
	Category      PatchField[string] `json:"category"`
	Detail        PatchField[string] `json:"detail"`
	AttachmentRef PatchField[string] `json:"attachment_ref"`
}

func (p *PatchExcuseRequest) ToAmendment(ip string) service.ExcuseAmendment {
	am := service.ExcuseAmendment{IP: ip}
	if p.Category.Present && p.Category.Value != nil {
		am.Category = p.Category.Value
	}
	if p.Detail.Present {
		empty := ""
		am.Detail = &empty
		if p.Detail.Value != nil {
			am.Detail = p.Detail.Value
		}
	}
	if p.AttachmentRef.Present {
		empty := ""
		am.AttachmentRef = &empty // null → hapus referensi
		if p.AttachmentRef.Value != nil {
			am.AttachmentRef = p.AttachmentRef.Value
		}
	}
	return am
}

func (p *PatchExcuseRequest) Empty() bool {
	return !p.Category.Present && !p.Detail.Present && !p.AttachmentRef.Present
}

/* =========================================================
   Responses
   ========================================================= */

type PersonResponse struct {
	PersonID    uuid.UUID            `json:"person_id"`
	NationalID  string               `json:"national_id"`
	Code        *string              `json:"code,omitempty"`
	DisplayName string               `json:"display_name"`
	Category    model.PersonCategory `json:"category"`
}

func FromPersonModel(p *model.PersonModel) *PersonResponse {
	if p == nil {
		return nil
	}
	return &PersonResponse{
		PersonID:    p.PersonID,
		NationalID:  p.PersonNationalID,
		Code:        p.PersonCode,
		DisplayName: p.DisplayName(),
		Category:    p.PersonCategory,
	}
}

type PresenceResponse struct {
	PresenceID  uuid.UUID             `json:"presence_id"`
	Day         string                `json:"day"`
	RecordedAt  time.Time             `json:"recorded_at"`
	Time        string                `json:"time"`
	Channel     model.PresenceChannel `json:"channel"`
	SubmittedBy string                `json:"submitted_by"`
	Outcome     service.Outcome       `json:"outcome,omitempty"`
	Person      *PersonResponse       `json:"person,omitempty"`
}

func FromPresenceModel(ev *model.PresenceEventModel, loc *time.Location) PresenceResponse {
	return PresenceResponse{
		PresenceID:  ev.PresenceID,
		Day:         ev.PresenceDay.Format("2006-01-02"),
		RecordedAt:  ev.PresenceRecordedAt.In(loc),
		Time:        status.Resolve(ev, nil, loc).Cell(),
		Channel:     ev.PresenceChannel,
		SubmittedBy: ev.PresenceSubmittedBy,
		Person:      FromPersonModel(ev.Person),
	}
}

func FromPresenceResult(res *service.PresenceResult, loc *time.Location) PresenceResponse {
	out := FromPresenceModel(res.Event, loc)
	out.Outcome = res.Outcome
	if out.Person == nil {
		out.Person = FromPersonModel(res.Person)
	}
	return out
}

type ExcuseResponse struct {
	ExcuseID      uuid.UUID            `json:"excuse_id"`
	Day           string               `json:"day"`
	Category      model.ExcuseCategory `json:"category"`
	CategoryLabel string               `json:"category_label"`
	Detail        string               `json:"detail"`
	AttachmentRef *string              `json:"attachment_ref,omitempty"`
	CreatedBy     string               `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedBy     string               `json:"updated_by"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Person        *PersonResponse      `json:"person,omitempty"`
}

func FromExcuseModel(ev *model.ExcuseEventModel) ExcuseResponse {
	return ExcuseResponse{
		ExcuseID:      ev.ExcuseID,
		Day:           ev.ExcuseDay.Format("2006-01-02"),
		Category:      ev.ExcuseCategory,
		CategoryLabel: ev.ExcuseCategory.Label(),
		Detail:        ev.ExcuseDetail,
		AttachmentRef: ev.ExcuseAttachmentRef,
		CreatedBy:     ev.ExcuseCreatedBy,
		CreatedAt:     ev.ExcuseCreatedAt,
		UpdatedBy:     ev.ExcuseUpdatedBy,
		UpdatedAt:     ev.ExcuseUpdatedAt,
		Person:        FromPersonModel(ev.Person),
	}
}

type StatusResponse struct {
	Person *PersonResponse  `json:"person"`
	Day    string           `json:"day"`
	Status status.DayStatus `json:"status"`
}

func FromDayStatus(r *service.DayStatusResult) StatusResponse {
	return StatusResponse{Person: FromPersonModel(r.Person), Day: r.Day.Format("2006-01-02"), Status: r.Status}
}

// HistoryItem: satu baris histori (presence atau excuse).
type HistoryItem struct {
	Kind        status.Kind       `json:"kind"`
	Day         string            `json:"day"`
	EffectiveAt time.Time         `json:"effective_at"`
	Person      *PersonResponse   `json:"person,omitempty"`
	Presence    *PresenceResponse `json:"presence,omitempty"`
	Excuse      *ExcuseResponse   `json:"excuse,omitempty"`
}

func FromHistoryEntries(items []history.Entry, loc *time.Location) []HistoryItem {
	out := make([]HistoryItem, 0, len(items))
	for _, e := range items {
		it := HistoryItem{Kind: e.Kind, Day: e.Day.Format("2006-01-02"), EffectiveAt: e.EffectiveAt.In(loc)}
		if e.Presence != nil {
			p := FromPresenceModel(e.Presence, loc)
			it.Person, p.Person = p.Person, nil
			it.Presence = &p
		}
		if e.Excuse != nil {
			x := FromExcuseModel(e.Excuse)
			it.Person, x.Person = x.Person, nil
			it.Excuse = &x
		}
		out = append(out, it)
	}
	return out
}
