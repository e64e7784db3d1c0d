package history

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/guard"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/status"
	"absensi_backend/internals/features/attendance/store"
)

// naive: load all, concat, sort desc, slice
func naive(ctx context.Context, t *testing.T, st store.Store, f store.EventFilter, loc *time.Location, offset, limit int) []Entry {
	t.Helper()
	var all []Entry
	pc := st.StreamPresence(ctx, f)
	for {
		p, ok, err := pc.Next(ctx)
		if err != nil {
			t.Fatalf("presence: %v", err)
		}
		if !ok {
			break
		}
		pv := p
		all = append(all, presenceEntry(&pv))
	}
	ec := st.StreamExcuse(ctx, f)
	for {
		e, ok, err := ec.Next(ctx)
		if err != nil {
			t.Fatalf("excuse: %v", err)
		}
		if !ok {
			break
		}
		ev := e
		all = append(all, excuseEntry(&ev, loc))
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.EffectiveAt.Equal(b.EffectiveAt) {
			return a.EffectiveAt.After(b.EffectiveAt)
		}
		if a.Kind != b.Kind {
			return a.Kind == status.Present
		}
		ai, bi := a.ID(), b.ID()
		for k := range ai {
			if ai[k] != bi[k] {
				return ai[k] > bi[k]
			}
		}
		return false
	})
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func seed(t *testing.T, rng *rand.Rand, loc *time.Location) *store.MemStore {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemStore(time.Second)
	persons := []model.PersonModel{
		{PersonNationalID: "10000001", PersonLastNames: "Quispe", PersonFirstNames: "Rosa", PersonCategory: model.PersonCategoryAppointed},
		{PersonNationalID: "10000002", PersonLastNames: "Mamani", PersonFirstNames: "Luis", PersonCategory: model.PersonCategoryContracted},
		{PersonNationalID: "10000003", PersonLastNames: "Peña", PersonFirstNames: "Óscar", PersonCategory: model.PersonCategoryAppointed},
	}
	if _, err := st.UpsertPersons(ctx, persons); err != nil {
		t.Fatalf("seed persons: %v", err)
	}
	roster, _ := st.ListPersons(ctx, store.RosterFilter{})

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range roster {
		for i := 0; i < 20; i++ {
			d := start.AddDate(0, 0, i)
			switch rng.Intn(3) {
			case 0:
				// beberapa presence tepat di tengah malam → tie dengan excuse orang lain
				at := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
				if rng.Intn(2) == 0 {
					at = at.Add(time.Duration(6+rng.Intn(4))*time.Hour + time.Duration(rng.Intn(60))*time.Minute)
				}
				_ = st.Atomic(ctx, guard.Key(p.PersonID, d), func(tx store.Tx) error {
					return tx.CreatePresence(ctx, &model.PresenceEventModel{
						PresencePersonID: p.PersonID, PresenceDay: d, PresenceRecordedAt: at,
						PresenceChannel: model.PresenceChannelScan,
					})
				})
			case 1:
				_ = st.Atomic(ctx, guard.Key(p.PersonID, d), func(tx store.Tx) error {
					return tx.CreateExcuse(ctx, &model.ExcuseEventModel{
						ExcusePersonID: p.PersonID, ExcuseDay: d, ExcuseCategory: model.ExcuseCategoryPermit,
					})
				})
			}
		}
	}
	return st
}

func TestMergeMatchesNaiveReference(t *testing.T) {
	loc := time.FixedZone("PET", -5*3600)
	ctx := context.Background()

	for seedVal := int64(1); seedVal <= 5; seedVal++ {
		rng := rand.New(rand.NewSource(seedVal))
		st := seed(t, rng, loc)

		from := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		filters := []store.EventFilter{
			{},
			{From: &from, To: &to},
			{Roster: store.RosterFilter{Query: "pena"}},
			{Roster: store.RosterFilter{Category: model.PersonCategoryAppointed}, From: &from},
		}

		for fi, f := range filters {
			for _, pg := range []struct{ offset, limit int }{{0, 5}, {5, 5}, {3, 17}, {0, 100}, {40, 10}, {200, 10}} {
				got, err := Query(ctx, st, f, loc, pg.offset, pg.limit)
				if err != nil {
					t.Fatalf("query: %v", err)
				}
				want := naive(ctx, t, st, f, loc, pg.offset, pg.limit)
				if len(got.Items) != len(want) {
					t.Fatalf("seed %d filter %d page %+v: len %d, want %d", seedVal, fi, pg, len(got.Items), len(want))
				}
				for i := range want {
					if got.Items[i].ID() != want[i].ID() || got.Items[i].Kind != want[i].Kind {
						t.Fatalf("seed %d filter %d page %+v: item %d differs", seedVal, fi, pg, i)
					}
				}
			}
		}
	}
}

func TestMergeTieBreakPresenceFirst(t *testing.T) {
	loc := time.UTC
	d := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	p := model.PresenceEventModel{PresenceID: uuid.New(), PresenceDay: d, PresenceRecordedAt: d}
	e := model.ExcuseEventModel{ExcuseID: uuid.New(), ExcuseDay: d}

	page, err := Merge(context.Background(),
		&fixed[model.PresenceEventModel]{items: []model.PresenceEventModel{p}},
		&fixed[model.ExcuseEventModel]{items: []model.ExcuseEventModel{e}},
		loc, 0, 10)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].Kind != status.Present {
		t.Fatalf("expected presence first on equal timestamps, got %+v", page.Items)
	}
	if page.HasMore {
		t.Fatalf("expected no more items")
	}
}

func TestMergeConsumesBoundedItems(t *testing.T) {
	base := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	var ps []model.PresenceEventModel
	var es []model.ExcuseEventModel
	for i := 0; i < 1000; i++ {
		ps = append(ps, model.PresenceEventModel{PresenceID: uuid.New(), PresenceRecordedAt: base.Add(-time.Duration(i) * time.Hour)})
		es = append(es, model.ExcuseEventModel{ExcuseID: uuid.New(), ExcuseDay: base.AddDate(0, 0, -i)})
	}
	pc := &fixed[model.PresenceEventModel]{items: ps}
	ec := &fixed[model.ExcuseEventModel]{items: es}

	page, err := Merge(context.Background(), pc, ec, time.UTC, 10, 10)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(page.Items) != 10 || !page.HasMore {
		t.Fatalf("expected full page with more, got %d has_more=%v", len(page.Items), page.HasMore)
	}
	if pc.pulled+ec.pulled > 22 {
		t.Fatalf("merge pulled too many items: %d", pc.pulled+ec.pulled)
	}
}

type fixed[T any] struct {
	items  []T
	pulled int
}

func (f *fixed[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if f.pulled >= len(f.items) {
		return zero, false, nil
	}
	it := f.items[f.pulled]
	f.pulled++
	return it, true, nil
}

func (f *fixed[T]) Close() error { return nil }
