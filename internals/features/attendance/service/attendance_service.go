// Package service: entry point operasi absensi. Otorisasi eksplisit lewat
// model.Authorizer; semua tulis lewat store.Atomic per key (person, day).
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/guard"
	"absensi_backend/internals/features/attendance/history"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/report"
	"absensi_backend/internals/features/attendance/status"
	"absensi_backend/internals/features/attendance/store"
	"absensi_backend/internals/helpers/dbtime"
)

const maxDetailLen = 1000

type Outcome string

const (
	OutcomeCreated         Outcome = "created"
	OutcomeAlreadyRecorded Outcome = "already_recorded"
)

type Service struct {
	store      store.Store
	auth       model.Authorizer
	storage    AttachmentStorage
	dispatcher report.Dispatcher
	metrics    *Metrics
	policy     AttachmentPolicy
	loc        *time.Location
	now        func() time.Time

	auditWG sync.WaitGroup
}

type Option func(*Service)

func WithStorage(s AttachmentStorage) Option {
	return func(svc *Service) { svc.storage = s }
}

func WithDispatcher(d report.Dispatcher) Option {
	return func(svc *Service) { svc.dispatcher = d }
}

func WithMetrics(m *Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

func WithAttachmentPolicy(p AttachmentPolicy) Option {
	return func(svc *Service) { svc.policy = p }
}

func WithLocation(loc *time.Location) Option {
	return func(svc *Service) { svc.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

func New(st store.Store, auth model.Authorizer, opts ...Option) *Service {
	s := &Service{
		store:      st,
		auth:       auth,
		dispatcher: report.LogDispatcher{},
		loc:        dbtime.DefaultLocation(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.auth == nil {
		s.auth = model.AllowAll
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) AttachmentMaxBytes() int64 { return s.policy.maxBytes() }

func (s *Service) authorize(actor model.Actor, op model.Operation) error {
	if !s.auth.Can(actor, op) {
		return model.ErrForbidden
	}
	return nil
}

/* =========================================================
   PRESENCE
========================================================= */

// PresenceCommand: core recordPresence. Day diturunkan dari At (zona aplikasi).
type PresenceCommand struct {
	PersonID  uuid.UUID
	At        time.Time
	Channel   model.PresenceChannel
	IP        string
	UserAgent string
}

type PresenceResult struct {
	Event   *model.PresenceEventModel `json:"event"`
	Person  *model.PersonModel        `json:"person,omitempty"`
	Outcome Outcome                   `json:"outcome"`
}

// RecordPresence: exactly-once per (person, day). Duplikat bukan error:
// Outcome = already_recorded dengan event yang sudah ada.
func (s *Service) RecordPresence(ctx context.Context, actor model.Actor, cmd PresenceCommand) (*PresenceResult, error) {
	res, err := s.recordPresence(ctx, actor, cmd)

	outcome := outcomeOf(err)
	label := string(outcome)
	if err == nil && res.Outcome == OutcomeAlreadyRecorded {
		outcome = model.AuditAlreadyRecorded
		label = string(OutcomeAlreadyRecorded)
	}
	s.metrics.submission(string(model.OpSubmitPresence), label)
	detail := map[string]any{"channel": string(cmd.Channel)}
	if cmd.UserAgent != "" {
		detail["user_agent"] = cmd.UserAgent
	}
	if err != nil {
		detail["error"] = err.Error()
	}
	at := cmd.At
	if at.IsZero() {
		at = s.now()
	}
	s.audit(auditEntry{
		op: model.OpSubmitPresence, outcome: outcome, actor: actor,
		personID: cmd.PersonID, day: dbtime.DayOf(at, s.loc), ip: cmd.IP, detail: detail,
	})
	return res, err
}

func (s *Service) recordPresence(ctx context.Context, actor model.Actor, cmd PresenceCommand) (*PresenceResult, error) {
	if err := s.authorize(actor, model.OpSubmitPresence); err != nil {
		return nil, err
	}
	if cmd.PersonID == uuid.Nil {
		return nil, model.NewValidationError("person_id", "person is required")
	}
	if _, ok := model.ParsePresenceChannel(string(cmd.Channel)); !ok {
		return nil, model.NewValidationError("channel", "channel must be SCAN or MANUAL")
	}
	now := s.now()
	if cmd.At.IsZero() {
		cmd.At = now
	}
	if cmd.At.After(now.Add(time.Minute)) {
		return nil, model.NewValidationError("at", "timestamp is in the future")
	}
	person, err := s.store.GetPerson(ctx, cmd.PersonID)
	if err != nil {
		return nil, err
	}

	day := dbtime.DayOf(cmd.At, s.loc)
	res := &PresenceResult{Person: person}

	timer := s.metrics.atomicTimer(string(model.OpSubmitPresence))
	err = s.store.Atomic(ctx, guard.Key(cmd.PersonID, day), func(tx store.Tx) error {
		existing, err := tx.Presence(ctx, cmd.PersonID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			res.Event, res.Outcome = existing, OutcomeAlreadyRecorded
			return nil
		}
		ev := &model.PresenceEventModel{
			PresencePersonID:    cmd.PersonID,
			PresenceDay:         day,
			PresenceRecordedAt:  cmd.At,
			PresenceChannel:     cmd.Channel,
			PresenceSubmittedBy: actor.Identity(),
			PresenceIP:          optString(cmd.IP),
			PresenceUserAgent:   optString(cmd.UserAgent),
			PresenceCreatedAt:   now,
		}
		if err := tx.CreatePresence(ctx, ev); err != nil {
			return err
		}
		res.Event, res.Outcome = ev, OutcomeCreated
		return nil
	})
	timer.ObserveDuration()

	// backstop unique index: lock terlewati (mis. instance lain tanpa advisory lock)
	if errors.Is(err, model.ErrDuplicate) {
		existing, qerr := s.store.QueryPresence(ctx, cmd.PersonID, day)
		if qerr != nil {
			return nil, qerr
		}
		if existing == nil {
			return nil, err
		}
		res.Event, res.Outcome = existing, OutcomeAlreadyRecorded
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Event.Person = person
	return res, nil
}

// ScanInput: kode mentah dari scanner atau input manual.
type ScanInput struct {
	Code       string
	NationalID string
	At         *time.Time // hanya MANUAL
	Channel    model.PresenceChannel
	IP         string
	UserAgent  string
}

// Submit: resolve kode → orang, lalu RecordPresence.
func (s *Service) Submit(ctx context.Context, actor model.Actor, in ScanInput) (*PresenceResult, error) {
	if err := s.authorize(actor, model.OpSubmitPresence); err != nil {
		s.metrics.submission(string(model.OpSubmitPresence), string(model.AuditRejected))
		return nil, err
	}
	person, err := s.resolvePerson(ctx, in.Code, in.NationalID)
	if err != nil {
		s.metrics.submission(string(model.OpSubmitPresence), string(outcomeOf(err)))
		return nil, err
	}
	cmd := PresenceCommand{
		PersonID:  person.PersonID,
		Channel:   in.Channel,
		IP:        in.IP,
		UserAgent: in.UserAgent,
	}
	if in.At != nil {
		if in.Channel != model.PresenceChannelManual {
			return nil, model.NewValidationError("at", "explicit timestamp is only allowed for manual entries")
		}
		cmd.At = *in.At
	}
	return s.RecordPresence(ctx, actor, cmd)
}

// resolvePerson: national_id eksplisit (harus 8 digit) atau ekstrak dari code.
func (s *Service) resolvePerson(ctx context.Context, code, nationalID string) (*model.PersonModel, error) {
	nid := strings.TrimSpace(nationalID)
	if nid != "" {
		if !ValidNationalID(nid) {
			return nil, model.NewValidationError("national_id", "national id must be exactly 8 digits")
		}
	} else {
		var err error
		if nid, err = ExtractNationalID(code); err != nil {
			return nil, err
		}
	}
	return s.store.FindPersonByNationalID(ctx, nid)
}

// LookupPerson: "buscar" tanpa mencatat apa pun.
func (s *Service) LookupPerson(ctx context.Context, actor model.Actor, code string) (*model.PersonModel, error) {
	if err := s.authorize(actor, model.OpLookupPerson); err != nil {
		return nil, err
	}
	return s.resolvePerson(ctx, code, "")
}

/* =========================================================
   EXCUSE
========================================================= */

type ExcuseCommand struct {
	PersonID      uuid.UUID
	NationalID    string
	Day           time.Time
	Category      string
	Detail        string
	AttachmentRef string
	Attachment    *Attachment
	IP            string
}

// RecordExcuse: create-once. Presence hari itu → ErrPresenceConflict,
// excuse hari itu → ErrDuplicate. Keduanya tanpa tulis.
func (s *Service) RecordExcuse(ctx context.Context, actor model.Actor, cmd ExcuseCommand) (*model.ExcuseEventModel, error) {
	ev, personID, day, err := s.recordExcuse(ctx, actor, cmd)

	s.metrics.submission(string(model.OpSubmitExcuse), string(outcomeOf(err)))
	detail := map[string]any{"category": cmd.Category}
	if err != nil {
		detail["error"] = err.Error()
	}
	s.audit(auditEntry{
		op: model.OpSubmitExcuse, outcome: outcomeOf(err), actor: actor,
		personID: personID, day: day, ip: cmd.IP, detail: detail,
	})
	return ev, err
}

func (s *Service) recordExcuse(ctx context.Context, actor model.Actor, cmd ExcuseCommand) (*model.ExcuseEventModel, uuid.UUID, time.Time, error) {
	if err := s.authorize(actor, model.OpSubmitExcuse); err != nil {
		return nil, cmd.PersonID, cmd.Day, err
	}

	// validasi dulu, sebelum tulis apa pun
	category, ok := model.ParseExcuseCategory(cmd.Category)
	if !ok {
		return nil, cmd.PersonID, cmd.Day, model.NewValidationError("category", "category must be one of MEDICAL_LEAVE, COMMISSION, PERMIT, OTHER")
	}
	if cmd.Day.IsZero() {
		return nil, cmd.PersonID, cmd.Day, model.NewValidationError("day", "day is required")
	}
	day := dbtime.NormalizeDay(cmd.Day)
	detail := strings.TrimSpace(cmd.Detail)
	if utf8.RuneCountInString(detail) > maxDetailLen {
		return nil, cmd.PersonID, day, model.NewValidationError("detail", "detail is too long")
	}
	if cmd.Attachment != nil {
		if err := s.policy.Validate(*cmd.Attachment); err != nil {
			return nil, cmd.PersonID, day, err
		}
		if s.storage == nil {
			return nil, cmd.PersonID, day, model.NewValidationError("file", "attachment storage is not configured")
		}
	}

	person, err := s.personForExcuse(ctx, cmd)
	if err != nil {
		return nil, cmd.PersonID, day, err
	}

	// cek cepat tanpa lock supaya file tidak di-upload untuk submission yang pasti ditolak
	if err := s.excuseAllowed(ctx, s.store.QueryPresence, s.store.QueryExcuse, person.PersonID, day); err != nil {
		return nil, person.PersonID, day, err
	}

	ref := strings.TrimSpace(cmd.AttachmentRef)
	if cmd.Attachment != nil {
		if ref, err = s.storage.Store(ctx, person.PersonID, day, *cmd.Attachment); err != nil {
			return nil, person.PersonID, day, &model.StoreError{Op: "attachment.store", Err: err}
		}
	}

	now := s.now()
	ev := &model.ExcuseEventModel{
		ExcusePersonID:      person.PersonID,
		ExcuseDay:           day,
		ExcuseCategory:      category,
		ExcuseDetail:        detail,
		ExcuseAttachmentRef: optString(ref),
		ExcuseCreatedBy:     actor.Identity(),
		ExcuseCreatedAt:     now,
		ExcuseUpdatedBy:     actor.Identity(),
		ExcuseUpdatedAt:     now,
	}

	timer := s.metrics.atomicTimer(string(model.OpSubmitExcuse))
	err = s.store.Atomic(ctx, guard.Key(person.PersonID, day), func(tx store.Tx) error {
		if err := s.excuseAllowed(ctx, tx.Presence, tx.Excuse, person.PersonID, day); err != nil {
			return err
		}
		return tx.CreateExcuse(ctx, ev)
	})
	timer.ObserveDuration()
	if err != nil {
		if ref != "" && cmd.Attachment != nil {
			log.Printf("[EXCUSE] ⚠️ lampiran %s tidak terpakai (%v)", ref, err)
			s.discardAttachment(ref)
		}
		return nil, person.PersonID, day, err
	}
	ev.Person = person
	return ev, person.PersonID, day, nil
}

func (s *Service) personForExcuse(ctx context.Context, cmd ExcuseCommand) (*model.PersonModel, error) {
	if cmd.PersonID != uuid.Nil {
		return s.store.GetPerson(ctx, cmd.PersonID)
	}
	nid := strings.TrimSpace(cmd.NationalID)
	if nid == "" {
		return nil, model.NewValidationError("person_id", "person_id or national_id is required")
	}
	if !ValidNationalID(nid) {
		return nil, model.NewValidationError("national_id", "national id must be exactly 8 digits")
	}
	return s.store.FindPersonByNationalID(ctx, nid)
}

type (
	presenceLookup func(ctx context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error)
	excuseLookup   func(ctx context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error)
)

func (s *Service) excuseAllowed(ctx context.Context, presence presenceLookup, excuse excuseLookup, personID uuid.UUID, day time.Time) error {
	p, err := presence(ctx, personID, day)
	if err != nil {
		return err
	}
	if p != nil {
		return model.ErrPresenceConflict
	}
	e, err := excuse(ctx, personID, day)
	if err != nil {
		return err
	}
	if e != nil {
		return model.ErrDuplicate
	}
	return nil
}

// ExcuseAmendment: field nil = tidak diubah.
type ExcuseAmendment struct {
	Category      *string
	Detail        *string
	AttachmentRef *string
	Attachment    *Attachment
	IP            string
}

// AmendExcuse: operasi admin terpisah dari jalur submit.
func (s *Service) AmendExcuse(ctx context.Context, actor model.Actor, id uuid.UUID, am ExcuseAmendment) (*model.ExcuseEventModel, error) {
	ev, err := s.amendExcuse(ctx, actor, id, am)

	outcome := model.AuditAmended
	if err != nil {
		outcome = outcomeOf(err)
	}
	s.metrics.submission(string(model.OpAmendExcuse), string(outcome))
	entry := auditEntry{op: model.OpAmendExcuse, outcome: outcome, actor: actor, ip: am.IP,
		detail: map[string]any{"excuse_id": id.String()}}
	if ev != nil {
		entry.personID, entry.day = ev.ExcusePersonID, ev.ExcuseDay
	}
	if err != nil {
		entry.detail["error"] = err.Error()
	}
	s.audit(entry)
	return ev, err
}

func (s *Service) amendExcuse(ctx context.Context, actor model.Actor, id uuid.UUID, am ExcuseAmendment) (*model.ExcuseEventModel, error) {
	if err := s.authorize(actor, model.OpAmendExcuse); err != nil {
		return nil, err
	}
	var category model.ExcuseCategory
	if am.Category != nil {
		c, ok := model.ParseExcuseCategory(*am.Category)
		if !ok {
			return nil, model.NewValidationError("category", "category must be one of MEDICAL_LEAVE, COMMISSION, PERMIT, OTHER")
		}
		category = c
	}
	if am.Detail != nil && utf8.RuneCountInString(strings.TrimSpace(*am.Detail)) > maxDetailLen {
		return nil, model.NewValidationError("detail", "detail is too long")
	}
	if am.Attachment != nil {
		if err := s.policy.Validate(*am.Attachment); err != nil {
			return nil, err
		}
		if s.storage == nil {
			return nil, model.NewValidationError("file", "attachment storage is not configured")
		}
	}

	current, err := s.store.GetExcuse(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := am.AttachmentRef
	if am.Attachment != nil {
		uri, err := s.storage.Store(ctx, current.ExcusePersonID, current.ExcuseDay, *am.Attachment)
		if err != nil {
			return nil, &model.StoreError{Op: "attachment.store", Err: err}
		}
		ref = &uri
	}

	var out *model.ExcuseEventModel
	err = s.store.Atomic(ctx, guard.Key(current.ExcusePersonID, current.ExcuseDay), func(tx store.Tx) error {
		ev, err := tx.ExcuseByID(ctx, id)
		if err != nil {
			return err
		}
		if am.Category != nil {
			ev.ExcuseCategory = category
		}
		if am.Detail != nil {
			ev.ExcuseDetail = strings.TrimSpace(*am.Detail)
		}
		if ref != nil {
			ev.ExcuseAttachmentRef = optString(strings.TrimSpace(*ref))
		}
		ev.ExcuseUpdatedBy = actor.Identity()
		ev.ExcuseUpdatedAt = s.now()
		if err := tx.UpdateExcuse(ctx, ev); err != nil {
			return err
		}
		out = ev
		return nil
	})
	if err != nil {
		if am.Attachment != nil && ref != nil {
			s.discardAttachment(*ref)
		}
		return nil, err
	}
	// lampiran lama yang diganti/dihapus
	if ref != nil && current.ExcuseAttachmentRef != nil && *current.ExcuseAttachmentRef != strings.TrimSpace(*ref) {
		s.discardAttachment(*current.ExcuseAttachmentRef)
	}
	out.Person = current.Person
	return out, nil
}

/* =========================================================
   READS
========================================================= */

func (s *Service) QueryPresence(ctx context.Context, actor model.Actor, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error) {
	if err := s.authorize(actor, model.OpReadStatus); err != nil {
		return nil, err
	}
	return s.store.QueryPresence(ctx, personID, dbtime.NormalizeDay(day))
}

func (s *Service) QueryExcuse(ctx context.Context, actor model.Actor, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error) {
	if err := s.authorize(actor, model.OpReadStatus); err != nil {
		return nil, err
	}
	return s.store.QueryExcuse(ctx, personID, dbtime.NormalizeDay(day))
}

type DayStatusResult struct {
	Person *model.PersonModel `json:"person"`
	Day    time.Time          `json:"day"`
	Status status.DayStatus   `json:"status"`
}

// DayStatus: status satu orang di satu hari (default hari ini).
func (s *Service) DayStatus(ctx context.Context, actor model.Actor, code string, day time.Time) (*DayStatusResult, error) {
	if err := s.authorize(actor, model.OpReadStatus); err != nil {
		return nil, err
	}
	person, err := s.resolvePerson(ctx, code, "")
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = dbtime.DayOf(s.now(), s.loc)
	}
	day = dbtime.NormalizeDay(day)
	p, err := s.store.QueryPresence(ctx, person.PersonID, day)
	if err != nil {
		return nil, err
	}
	e, err := s.store.QueryExcuse(ctx, person.PersonID, day)
	if err != nil {
		return nil, err
	}
	return &DayStatusResult{Person: person, Day: day, Status: status.Resolve(p, e, s.loc)}, nil
}

// History: gabungan presence + excuse, paginasi offset.
func (s *Service) History(ctx context.Context, actor model.Actor, f store.EventFilter, offset, limit int) (history.Page, error) {
	if err := s.authorize(actor, model.OpReadHistory); err != nil {
		return history.Page{}, err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return history.Page{}, model.NewValidationError("from", "from must not be after to")
	}
	timer := s.metrics.readTimer("history")
	defer timer.ObserveDuration()
	return history.Query(ctx, s.store, f, s.loc, offset, limit)
}

// Report: matriks roster × hari.
func (s *Service) Report(ctx context.Context, actor model.Actor, req report.Request) (*report.Matrix, error) {
	if err := s.authorize(actor, model.OpReadReport); err != nil {
		return nil, err
	}
	if req.From.IsZero() && req.To.IsZero() {
		today := dbtime.DayOf(s.now(), s.loc)
		req.From, req.To = today, today
	}
	timer := s.metrics.readTimer("report")
	defer timer.ObserveDuration()
	return report.Build(ctx, s.store, req, s.loc)
}

// WeeklyDigest: ringkasan Senin–Jumat per orang lewat dispatcher.
func (s *Service) WeeklyDigest(ctx context.Context, actor model.Actor, opts report.DigestOptions) (*report.DigestResult, error) {
	if err := s.authorize(actor, model.OpReadReport); err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = s.now()
	}
	timer := s.metrics.readTimer("digest")
	defer timer.ObserveDuration()
	return report.WeeklyDigest(ctx, s.store, s.dispatcher, s.loc, opts)
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
