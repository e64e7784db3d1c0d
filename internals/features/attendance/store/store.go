// Package store: event ledger presence & excuse plus roster orang.
// Semua tulis lewat Atomic (per key person/day); baca tanpa lock.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/model"
)

// RosterFilter: subset orang (pencarian bebas, kategori, id eksplisit).
type RosterFilter struct {
	Query     string
	Category  model.PersonCategory
	PersonIDs []uuid.UUID
}

// EventFilter: roster + rentang hari inklusif (nil = tanpa batas).
type EventFilter struct {
	Roster RosterFilter
	From   *time.Time
	To     *time.Time
}

// Cursor: urutan lazy & terbatas. Next → (item, false, nil) saat habis.
type Cursor[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Tx: operasi di dalam satu unit atomic. Query* → (nil, nil) kalau tidak ada.
type Tx interface {
	Presence(ctx context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error)
	Excuse(ctx context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error)
	ExcuseByID(ctx context.Context, id uuid.UUID) (*model.ExcuseEventModel, error)

	CreatePresence(ctx context.Context, ev *model.PresenceEventModel) error
	CreateExcuse(ctx context.Context, ev *model.ExcuseEventModel) error
	UpdateExcuse(ctx context.Context, ev *model.ExcuseEventModel) error
}

type Store interface {
	// Atomic: eksklusif per key, commit-or-nothing. Error dari fn dikembalikan apa adanya.
	Atomic(ctx context.Context, key string, fn func(tx Tx) error) error

	QueryPresence(ctx context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error)
	QueryExcuse(ctx context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error)
	GetExcuse(ctx context.Context, id uuid.UUID) (*model.ExcuseEventModel, error)

	// Stream* selalu mulai dari awal (restartable); urutan:
	//   presence: recorded_at DESC, id DESC
	//   excuse:   day DESC, id DESC
	StreamPresence(ctx context.Context, f EventFilter) Cursor[model.PresenceEventModel]
	StreamExcuse(ctx context.Context, f EventFilter) Cursor[model.ExcuseEventModel]

	// Bulk range untuk matrix (satu query per jenis)
	ListPresenceInRange(ctx context.Context, personIDs []uuid.UUID, from, to time.Time) ([]model.PresenceEventModel, error)
	ListExcuseInRange(ctx context.Context, personIDs []uuid.UUID, from, to time.Time) ([]model.ExcuseEventModel, error)

	// Roster (read-only untuk core)
	ListPersons(ctx context.Context, f RosterFilter) ([]model.PersonModel, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*model.PersonModel, error)
	FindPersonByNationalID(ctx context.Context, nationalID string) (*model.PersonModel, error)
	UpsertPersons(ctx context.Context, persons []model.PersonModel) (int, error)

	AppendAudit(ctx context.Context, row *model.AuditLogModel) error
}

/* =========================================================
   Ordering helpers (dipakai MemStore & test)
========================================================= */

// PresenceBefore: a muncul sebelum b dalam urutan stream presence.
func PresenceBefore(a, b model.PresenceEventModel) bool {
	if !a.PresenceRecordedAt.Equal(b.PresenceRecordedAt) {
		return a.PresenceRecordedAt.After(b.PresenceRecordedAt)
	}
	return uuidGreater(a.PresenceID, b.PresenceID)
}

// ExcuseBefore: a muncul sebelum b dalam urutan stream excuse.
func ExcuseBefore(a, b model.ExcuseEventModel) bool {
	if !a.ExcuseDay.Equal(b.ExcuseDay) {
		return a.ExcuseDay.After(b.ExcuseDay)
	}
	return uuidGreater(a.ExcuseID, b.ExcuseID)
}

// uuidGreater: urutan byte, sama dengan perbandingan tipe uuid di Postgres.
func uuidGreater(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func inRange(day time.Time, f EventFilter) bool {
	if f.From != nil && day.Before(*f.From) {
		return false
	}
	if f.To != nil && day.After(*f.To) {
		return false
	}
	return true
}

// MatchPerson: evaluasi RosterFilter di memori (setara dengan versi SQL).
func MatchPerson(p model.PersonModel, f RosterFilter) bool {
	if f.Category != "" && p.PersonCategory != f.Category {
		return false
	}
	if len(f.PersonIDs) > 0 {
		found := false
		for _, id := range f.PersonIDs {
			if id == p.PersonID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return p.Matches(f.Query)
}

func (f RosterFilter) isEmpty() bool {
	return f.Query == "" && f.Category == "" && len(f.PersonIDs) == 0
}
