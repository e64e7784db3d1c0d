package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/guard"
	"absensi_backend/internals/features/attendance/model"
)

// MemStore: implementasi in-process (test & STORE_DRIVER=memory).
// Unik (person, day) dicek ulang saat commit sebagai backstop.
type MemStore struct {
	mu sync.RWMutex

	persons   map[uuid.UUID]model.PersonModel
	byNID     map[string]uuid.UUID
	presences map[string]model.PresenceEventModel // key person/day
	excuses   map[string]model.ExcuseEventModel   // key person/day
	excuseKey map[uuid.UUID]string                // excuse_id → key
	audits    []model.AuditLogModel

	locks *guard.KeyLock
	now   func() time.Time
}

func NewMemStore(lockTimeout time.Duration) *MemStore {
	return &MemStore{
		persons:   make(map[uuid.UUID]model.PersonModel),
		byNID:     make(map[string]uuid.UUID),
		presences: make(map[string]model.PresenceEventModel),
		excuses:   make(map[string]model.ExcuseEventModel),
		excuseKey: make(map[uuid.UUID]string),
		locks:     guard.NewKeyLock(lockTimeout),
		now:       time.Now,
	}
}

/* =========================================================
   Atomic
========================================================= */

type memTx struct {
	s *MemStore

	presences map[string]model.PresenceEventModel
	excuses   map[string]model.ExcuseEventModel
	updates   map[string]model.ExcuseEventModel
}

func (s *MemStore) Atomic(ctx context.Context, key string, fn func(tx Tx) error) error {
	release, err := s.locks.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	tx := &memTx{
		s:         s,
		presences: map[string]model.PresenceEventModel{},
		excuses:   map[string]model.ExcuseEventModel{},
		updates:   map[string]model.ExcuseEventModel{},
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return mapError("atomic", err)
	}
	return s.commit(tx)
}

func (s *MemStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range tx.presences {
		if _, ok := s.presences[k]; ok {
			return model.ErrDuplicate
		}
	}
	for k := range tx.excuses {
		if _, ok := s.excuses[k]; ok {
			return model.ErrDuplicate
		}
	}
	for k, ev := range tx.updates {
		if _, ok := s.excuses[k]; !ok {
			if _, pending := tx.excuses[k]; !pending {
				return model.ErrNotFound
			}
		}
		tx.excuses[k] = ev
	}

	for k, ev := range tx.presences {
		s.presences[k] = ev
	}
	for k, ev := range tx.excuses {
		s.excuses[k] = ev
		s.excuseKey[ev.ExcuseID] = k
	}
	return nil
}

func (t *memTx) Presence(ctx context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error) {
	k := key(personID, day)
	if ev, ok := t.presences[k]; ok {
		return &ev, nil
	}
	return t.s.QueryPresence(ctx, personID, day)
}

func (t *memTx) Excuse(ctx context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error) {
	k := key(personID, day)
	if ev, ok := t.updates[k]; ok {
		return &ev, nil
	}
	if ev, ok := t.excuses[k]; ok {
		return &ev, nil
	}
	return t.s.QueryExcuse(ctx, personID, day)
}

func (t *memTx) ExcuseByID(ctx context.Context, id uuid.UUID) (*model.ExcuseEventModel, error) {
	for _, m := range []map[string]model.ExcuseEventModel{t.updates, t.excuses} {
		for _, ev := range m {
			if ev.ExcuseID == id {
				ev := ev
				return &ev, nil
			}
		}
	}
	return t.s.GetExcuse(ctx, id)
}

func (t *memTx) CreatePresence(_ context.Context, ev *model.PresenceEventModel) error {
	ev.PresenceDay = normalizeDay(ev.PresenceDay)
	k := key(ev.PresencePersonID, ev.PresenceDay)
	if _, ok := t.presences[k]; ok {
		return model.ErrDuplicate
	}
	if ev.PresenceID == uuid.Nil {
		ev.PresenceID = uuid.New()
	}
	if ev.PresenceCreatedAt.IsZero() {
		ev.PresenceCreatedAt = t.s.now()
	}
	cp := *ev
	cp.Person = nil
	t.presences[k] = cp
	return nil
}

func (t *memTx) CreateExcuse(_ context.Context, ev *model.ExcuseEventModel) error {
	ev.ExcuseDay = normalizeDay(ev.ExcuseDay)
	k := key(ev.ExcusePersonID, ev.ExcuseDay)
	if _, ok := t.excuses[k]; ok {
		return model.ErrDuplicate
	}
	if ev.ExcuseID == uuid.Nil {
		ev.ExcuseID = uuid.New()
	}
	cp := *ev
	cp.Person = nil
	t.excuses[k] = cp
	return nil
}

func (t *memTx) UpdateExcuse(_ context.Context, ev *model.ExcuseEventModel) error {
	cp := *ev
	cp.Person = nil
	t.updates[key(ev.ExcusePersonID, ev.ExcuseDay)] = cp
	return nil
}

/* =========================================================
   Reads
========================================================= */

func (s *MemStore) QueryPresence(_ context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.presences[key(personID, day)]
	if !ok {
		return nil, nil
	}
	return s.withPresencePerson(ev), nil
}

func (s *MemStore) QueryExcuse(_ context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.excuses[key(personID, day)]
	if !ok {
		return nil, nil
	}
	return s.withExcusePerson(ev), nil
}

func (s *MemStore) GetExcuse(_ context.Context, id uuid.UUID) (*model.ExcuseEventModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.excuseKey[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s.withExcusePerson(s.excuses[k]), nil
}

func (s *MemStore) withPresencePerson(ev model.PresenceEventModel) *model.PresenceEventModel {
	if p, ok := s.persons[ev.PresencePersonID]; ok {
		ev.Person = &p
	}
	return &ev
}

func (s *MemStore) withExcusePerson(ev model.ExcuseEventModel) *model.ExcuseEventModel {
	if p, ok := s.persons[ev.ExcusePersonID]; ok {
		ev.Person = &p
	}
	return &ev
}

// rosterMatch: filter roster terhadap snapshot persons (harus di bawah RLock).
func (s *MemStore) rosterMatch(personID uuid.UUID, f RosterFilter) bool {
	if f.isEmpty() {
		return true
	}
	p, ok := s.persons[personID]
	if !ok {
		return false
	}
	return MatchPerson(p, f)
}

func (s *MemStore) StreamPresence(_ context.Context, f EventFilter) Cursor[model.PresenceEventModel] {
	return &sliceCursor[model.PresenceEventModel]{load: func() []model.PresenceEventModel {
		s.mu.RLock()
		defer s.mu.RUnlock()
		out := make([]model.PresenceEventModel, 0)
		for _, ev := range s.presences {
			if inRange(ev.PresenceDay, f) && s.rosterMatch(ev.PresencePersonID, f.Roster) {
				out = append(out, *s.withPresencePerson(ev))
			}
		}
		sort.Slice(out, func(i, j int) bool { return PresenceBefore(out[i], out[j]) })
		return out
	}}
}

func (s *MemStore) StreamExcuse(_ context.Context, f EventFilter) Cursor[model.ExcuseEventModel] {
	return &sliceCursor[model.ExcuseEventModel]{load: func() []model.ExcuseEventModel {
		s.mu.RLock()
		defer s.mu.RUnlock()
		out := make([]model.ExcuseEventModel, 0)
		for _, ev := range s.excuses {
			if inRange(ev.ExcuseDay, f) && s.rosterMatch(ev.ExcusePersonID, f.Roster) {
				out = append(out, *s.withExcusePerson(ev))
			}
		}
		sort.Slice(out, func(i, j int) bool { return ExcuseBefore(out[i], out[j]) })
		return out
	}}
}

func (s *MemStore) ListPresenceInRange(_ context.Context, personIDs []uuid.UUID, from, to time.Time) ([]model.PresenceEventModel, error) {
	ids := idSet(personIDs)
	from, to = normalizeDay(from), normalizeDay(to)
	f := EventFilter{From: &from, To: &to}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PresenceEventModel, 0)
	for _, ev := range s.presences {
		if _, ok := ids[ev.PresencePersonID]; ok && inRange(ev.PresenceDay, f) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *MemStore) ListExcuseInRange(_ context.Context, personIDs []uuid.UUID, from, to time.Time) ([]model.ExcuseEventModel, error) {
	ids := idSet(personIDs)
	from, to = normalizeDay(from), normalizeDay(to)
	f := EventFilter{From: &from, To: &to}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ExcuseEventModel, 0)
	for _, ev := range s.excuses {
		if _, ok := ids[ev.ExcusePersonID]; ok && inRange(ev.ExcuseDay, f) {
			out = append(out, ev)
		}
	}
	return out, nil
}

/* =========================================================
   Roster
========================================================= */

func (s *MemStore) ListPersons(_ context.Context, f RosterFilter) ([]model.PersonModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PersonModel, 0, len(s.persons))
	for _, p := range s.persons {
		if MatchPerson(p, f) {
			out = append(out, p)
		}
	}
	SortPersons(out)
	return out, nil
}

func (s *MemStore) GetPerson(_ context.Context, id uuid.UUID) (*model.PersonModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) FindPersonByNationalID(_ context.Context, nationalID string) (*model.PersonModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNID[strings.TrimSpace(nationalID)]
	if !ok {
		return nil, model.ErrNotFound
	}
	p := s.persons[id]
	return &p, nil
}

// UpsertPersons: idempotent by national ID.
func (s *MemStore) UpsertPersons(_ context.Context, persons []model.PersonModel) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, p := range persons {
		p.PersonNationalID = strings.TrimSpace(p.PersonNationalID)
		if id, ok := s.byNID[p.PersonNationalID]; ok {
			prev := s.persons[id]
			p.PersonID = id
			p.PersonCreatedAt = prev.PersonCreatedAt
		} else {
			if p.PersonID == uuid.Nil {
				p.PersonID = uuid.New()
			}
			p.PersonCreatedAt = now
		}
		p.PersonUpdatedAt = now
		p.PersonSearch = p.SearchText()
		s.persons[p.PersonID] = p
		s.byNID[p.PersonNationalID] = p.PersonID
	}
	return len(persons), nil
}

func (s *MemStore) AppendAudit(_ context.Context, row *model.AuditLogModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.AuditID == uuid.Nil {
		row.AuditID = uuid.New()
	}
	if row.AuditCreatedAt.IsZero() {
		row.AuditCreatedAt = s.now()
	}
	s.audits = append(s.audits, *row)
	return nil
}

// Audits: salinan log audit (untuk test).
func (s *MemStore) Audits() []model.AuditLogModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AuditLogModel(nil), s.audits...)
}

// Counts: jumlah presence & excuse tersimpan.
func (s *MemStore) Counts() (presences, excuses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presences), len(s.excuses)
}

/* =========================================================
   Helpers
========================================================= */

// SortPersons: apellidos, nombres, dni.
func SortPersons(ps []model.PersonModel) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.PersonLastNames != b.PersonLastNames {
			return a.PersonLastNames < b.PersonLastNames
		}
		if a.PersonFirstNames != b.PersonFirstNames {
			return a.PersonFirstNames < b.PersonFirstNames
		}
		return a.PersonNationalID < b.PersonNationalID
	})
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	m := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func normalizeDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sliceCursor: snapshot diambil saat Next pertama.
type sliceCursor[T any] struct {
	load   func() []T
	items  []T
	loaded bool
	pos    int
}

func (c *sliceCursor[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if !c.loaded {
		c.items = c.load()
		c.loaded = true
	}
	if c.pos >= len(c.items) {
		return zero, false, nil
	}
	it := c.items[c.pos]
	c.pos++
	return it, true, nil
}

func (c *sliceCursor[T]) Close() error {
	c.items = nil
	c.pos = 0
	return nil
}

func key(personID uuid.UUID, day time.Time) string {
	return guard.Key(personID, normalizeDay(day))
}
