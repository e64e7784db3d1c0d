package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"absensi_backend/internals/features/attendance/guard"
	"absensi_backend/internals/features/attendance/model"
)

const defaultBatchSize = 200

// GormStore: PostgreSQL. Lock berlapis:
//  1. guard.KeyLock (in-process, bounded)
//  2. pg_advisory_xact_lock per key (antar instance), dibatasi lock_timeout
//  3. unique index (person, day) sebagai backstop → 23505 = duplicate
type GormStore struct {
	DB          *gorm.DB
	LockTimeout time.Duration
	BatchSize   int

	locks *guard.KeyLock
}

func NewGormStore(db *gorm.DB, lockTimeout time.Duration) *GormStore {
	return &GormStore{
		DB:          db,
		LockTimeout: lockTimeout,
		BatchSize:   defaultBatchSize,
		locks:       guard.NewKeyLock(lockTimeout),
	}
}

// advisoryKey: FNV-64a dari key → bigint untuk pg_advisory_xact_lock.
func advisoryKey(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

func dayParam(day time.Time) string {
	return normalizeDay(day).Format("2006-01-02")
}

func (s *GormStore) Atomic(ctx context.Context, key string, fn func(tx Tx) error) error {
	release, err := s.locks.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.LockTimeout > 0 {
			// SET tidak menerima parameter bind
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.LockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey(key)).Error; err != nil {
			return err
		}
		return fn(&gormTx{db: tx})
	})
	return mapError("atomic", err)
}

/* =========================================================
   Tx
========================================================= */

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Presence(ctx context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error) {
	return queryPresence(t.db.WithContext(ctx), personID, day)
}

func (t *gormTx) Excuse(ctx context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error) {
	return queryExcuse(t.db.WithContext(ctx), personID, day)
}

func (t *gormTx) ExcuseByID(ctx context.Context, id uuid.UUID) (*model.ExcuseEventModel, error) {
	var row model.ExcuseEventModel
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("excuse_id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, mapError("excuse.by_id", err)
	}
	return &row, nil
}

func (t *gormTx) CreatePresence(ctx context.Context, ev *model.PresenceEventModel) error {
	ev.PresenceDay = normalizeDay(ev.PresenceDay)
	if ev.PresenceID == uuid.Nil {
		ev.PresenceID = uuid.New()
	}
	return mapError("presence.create", t.db.WithContext(ctx).Omit(clause.Associations).Create(ev).Error)
}

func (t *gormTx) CreateExcuse(ctx context.Context, ev *model.ExcuseEventModel) error {
	ev.ExcuseDay = normalizeDay(ev.ExcuseDay)
	if ev.ExcuseID == uuid.Nil {
		ev.ExcuseID = uuid.New()
	}
	return mapError("excuse.create", t.db.WithContext(ctx).Omit(clause.Associations).Create(ev).Error)
}

func (t *gormTx) UpdateExcuse(ctx context.Context, ev *model.ExcuseEventModel) error {
	res := t.db.WithContext(ctx).
		Model(&model.ExcuseEventModel{}).
		Where("excuse_id = ?", ev.ExcuseID).
		Updates(map[string]any{
			"excuse_category":       ev.ExcuseCategory,
			"excuse_detail":         ev.ExcuseDetail,
			"excuse_attachment_ref": ev.ExcuseAttachmentRef,
			"excuse_updated_by":     ev.ExcuseUpdatedBy,
			"excuse_updated_at":     ev.ExcuseUpdatedAt,
		})
	if res.Error != nil {
		return mapError("excuse.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

/* =========================================================
   Reads
========================================================= */

func queryPresence(db *gorm.DB, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error) {
	var rows []model.PresenceEventModel
	if err := db.
		Where("presence_person_id = ? AND presence_day = ?::date", personID, dayParam(day)).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, mapError("presence.query", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func queryExcuse(db *gorm.DB, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error) {
	var rows []model.ExcuseEventModel
	if err := db.
		Where("excuse_person_id = ? AND excuse_day = ?::date", personID, dayParam(day)).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, mapError("excuse.query", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) QueryPresence(ctx context.Context, personID uuid.UUID, day time.Time) (*model.PresenceEventModel, error) {
	return queryPresence(s.DB.WithContext(ctx).Preload("Person"), personID, day)
}

func (s *GormStore) QueryExcuse(ctx context.Context, personID uuid.UUID, day time.Time) (*model.ExcuseEventModel, error) {
	return queryExcuse(s.DB.WithContext(ctx).Preload("Person"), personID, day)
}

func (s *GormStore) GetExcuse(ctx context.Context, id uuid.UUID) (*model.ExcuseEventModel, error) {
	var row model.ExcuseEventModel
	err := s.DB.WithContext(ctx).Preload("Person").Where("excuse_id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, mapError("excuse.get", err)
	}
	return &row, nil
}

// applyRoster: WHERE <col> IN (SELECT person_id FROM attendance_persons WHERE ...)
func applyRoster(db *gorm.DB, col string, f RosterFilter) *gorm.DB {
	if f.isEmpty() {
		return db
	}
	sub := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.PersonModel{}).
		Select("person_id")
	sub = rosterWhere(sub, f)
	return db.Where(col+" IN (?)", sub)
}

func rosterWhere(db *gorm.DB, f RosterFilter) *gorm.DB {
	if q := model.Fold(f.Query); q != "" {
		db = db.Where("person_search LIKE ? ESCAPE '\\'", "%"+escapeLike(q)+"%")
	}
	if f.Category != "" {
		db = db.Where("person_category = ?", f.Category)
	}
	if len(f.PersonIDs) > 0 {
		db = db.Where("person_id = ANY(?::uuid[])", pq.Array(uuidStrings(f.PersonIDs)))
	}
	return db
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (s *GormStore) batchSize() int {
	if s.BatchSize <= 0 {
		return defaultBatchSize
	}
	return s.BatchSize
}

func (s *GormStore) StreamPresence(ctx context.Context, f EventFilter) Cursor[model.PresenceEventModel] {
	return &keysetCursor[model.PresenceEventModel]{
		fetch: func(ctx context.Context, last *model.PresenceEventModel) ([]model.PresenceEventModel, error) {
			q := s.DB.WithContext(ctx).Model(&model.PresenceEventModel{}).Preload("Person")
			q = applyRoster(q, "presence_person_id", f.Roster)
			if f.From != nil {
				q = q.Where("presence_day >= ?::date", dayParam(*f.From))
			}
			if f.To != nil {
				q = q.Where("presence_day <= ?::date", dayParam(*f.To))
			}
			if last != nil {
				q = q.Where("(presence_recorded_at, presence_id) < (?, ?)", last.PresenceRecordedAt, last.PresenceID)
			}
			var rows []model.PresenceEventModel
			err := q.Order("presence_recorded_at DESC, presence_id DESC").
				Limit(s.batchSize()).
				Find(&rows).Error
			return rows, mapError("presence.stream", err)
		},
		batch: s.batchSize(),
	}
}

func (s *GormStore) StreamExcuse(ctx context.Context, f EventFilter) Cursor[model.ExcuseEventModel] {
	return &keysetCursor[model.ExcuseEventModel]{
		fetch: func(ctx context.Context, last *model.ExcuseEventModel) ([]model.ExcuseEventModel, error) {
			q := s.DB.WithContext(ctx).Model(&model.ExcuseEventModel{}).Preload("Person")
			q = applyRoster(q, "excuse_person_id", f.Roster)
			if f.From != nil {
				q = q.Where("excuse_day >= ?::date", dayParam(*f.From))
			}
			if f.To != nil {
				q = q.Where("excuse_day <= ?::date", dayParam(*f.To))
			}
			if last != nil {
				q = q.Where("(excuse_day, excuse_id) < (?::date, ?)", dayParam(last.ExcuseDay), last.ExcuseID)
			}
			var rows []model.ExcuseEventModel
			err := q.Order("excuse_day DESC, excuse_id DESC").
				Limit(s.batchSize()).
				Find(&rows).Error
			return rows, mapError("excuse.stream", err)
		},
		batch: s.batchSize(),
	}
}

func (s *GormStore) ListPresenceInRange(ctx context.Context, personIDs []uuid.UUID, from, to time.Time) ([]model.PresenceEventModel, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	var rows []model.PresenceEventModel
	err := s.DB.WithContext(ctx).
		Where("presence_person_id = ANY(?::uuid[]) AND presence_day BETWEEN ?::date AND ?::date",
			pq.Array(uuidStrings(personIDs)), dayParam(from), dayParam(to)).
		Find(&rows).Error
	if err != nil {
		return nil, mapError("presence.range", err)
	}
	return rows, nil
}

func (s *GormStore) ListExcuseInRange(ctx context.Context, personIDs []uuid.UUID, from, to time.Time) ([]model.ExcuseEventModel, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	var rows []model.ExcuseEventModel
	err := s.DB.WithContext(ctx).
		Where("excuse_person_id = ANY(?::uuid[]) AND excuse_day BETWEEN ?::date AND ?::date",
			pq.Array(uuidStrings(personIDs)), dayParam(from), dayParam(to)).
		Find(&rows).Error
	if err != nil {
		return nil, mapError("excuse.range", err)
	}
	return rows, nil
}

/* =========================================================
   Roster
========================================================= */

func (s *GormStore) ListPersons(ctx context.Context, f RosterFilter) ([]model.PersonModel, error) {
	var rows []model.PersonModel
	q := rosterWhere(s.DB.WithContext(ctx).Model(&model.PersonModel{}), f)
	if err := q.Order("person_last_names ASC, person_first_names ASC, person_national_id ASC").
		Find(&rows).Error; err != nil {
		return nil, mapError("person.list", err)
	}
	return rows, nil
}

func (s *GormStore) GetPerson(ctx context.Context, id uuid.UUID) (*model.PersonModel, error) {
	var p model.PersonModel
	err := s.DB.WithContext(ctx).Where("person_id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, mapError("person.get", err)
	}
	return &p, nil
}

func (s *GormStore) FindPersonByNationalID(ctx context.Context, nationalID string) (*model.PersonModel, error) {
	var p model.PersonModel
	err := s.DB.WithContext(ctx).
		Where("person_national_id = ?", strings.TrimSpace(nationalID)).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, mapError("person.by_nid", err)
	}
	return &p, nil
}

// UpsertPersons: ON CONFLICT (person_national_id) DO UPDATE.
func (s *GormStore) UpsertPersons(ctx context.Context, persons []model.PersonModel) (int, error) {
	if len(persons) == 0 {
		return 0, nil
	}
	for i := range persons {
		persons[i].PersonNationalID = strings.TrimSpace(persons[i].PersonNationalID)
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "person_national_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"person_code",
			"person_last_names",
			"person_first_names",
			"person_category",
			"person_email",
			"person_search",
			"person_updated_at",
		}),
	}).CreateInBatches(&persons, 500)
	if res.Error != nil {
		return 0, mapError("person.upsert", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *GormStore) AppendAudit(ctx context.Context, row *model.AuditLogModel) error {
	return mapError("audit.append", s.DB.WithContext(ctx).Create(row).Error)
}
