package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"absensi_backend/internals/features/attendance/model"
)

const auditTimeout = 2 * time.Second

type auditEntry struct {
	op       model.Operation
	outcome  model.AuditOutcome
	actor    model.Actor
	personID uuid.UUID
	day      time.Time
	ip       string
	detail   map[string]any
}

// outcomeOf: error → outcome audit.
func outcomeOf(err error) model.AuditOutcome {
	switch {
	case err == nil:
		return model.AuditCreated
	case errors.Is(err, model.ErrDuplicate),
		errors.Is(err, model.ErrPresenceConflict),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrForbidden):
		return model.AuditRejected
	default:
		return model.AuditFailed
	}
}

// audit: best-effort di goroutine sendiri. Gagal tulis hanya di-log.
func (s *Service) audit(e auditEntry) {
	row := &model.AuditLogModel{
		AuditOperation: string(e.op),
		AuditOutcome:   e.outcome,
		AuditActor:     e.actor.Identity(),
		AuditDetail:    datatypes.JSONMap(e.detail),
	}
	if e.personID != uuid.Nil {
		id := e.personID
		row.AuditPersonID = &id
	}
	if !e.day.IsZero() {
		d := e.day
		row.AuditDay = &d
	}
	if e.ip != "" {
		ip := e.ip
		row.AuditIP = &ip
	}

	s.auditWG.Add(1)
	go func() {
		defer s.auditWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := s.store.AppendAudit(ctx, row); err != nil {
			log.Printf("[AUDIT] ⚠️ gagal simpan audit %s/%s: %v", row.AuditOperation, row.AuditOutcome, err)
			s.metrics.auditDropped()
		}
	}()
}

// FlushAudit: tunggu semua audit yang sedang ditulis (shutdown & test).
func (s *Service) FlushAudit() {
	s.auditWG.Wait()
}
