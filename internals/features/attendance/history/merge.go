// Package history: gabungan presence + excuse berurutan waktu (desc)
// dengan paginasi, tanpa memuat seluruh tabel.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/status"
	"absensi_backend/internals/features/attendance/store"
	"absensi_backend/internals/helpers/dbtime"
)

type Entry struct {
	Kind        status.Kind `json:"kind"` // PRESENT | EXCUSED
	EffectiveAt time.Time   `json:"effective_at"`
	Day         time.Time   `json:"day"`

	Presence *model.PresenceEventModel `json:"presence,omitempty"`
	Excuse   *model.ExcuseEventModel   `json:"excuse,omitempty"`
}

func (e Entry) ID() uuid.UUID {
	if e.Presence != nil {
		return e.Presence.PresenceID
	}
	if e.Excuse != nil {
		return e.Excuse.ExcuseID
	}
	return uuid.Nil
}

type Page struct {
	Items   []Entry `json:"items"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
	HasMore bool    `json:"has_more"`
}

// head: satu item terdepan dari cursor (nil = habis)
type head[T any] struct {
	cur  store.Cursor[T]
	item *T
	done bool
}

func (h *head[T]) peek(ctx context.Context) (*T, error) {
	if h.item != nil || h.done {
		return h.item, nil
	}
	it, ok, err := h.cur.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		h.done = true
		return nil, nil
	}
	h.item = &it
	return h.item, nil
}

func (h *head[T]) take() *T {
	it := h.item
	h.item = nil
	return it
}

func presenceEntry(p *model.PresenceEventModel) Entry {
	return Entry{Kind: status.Present, EffectiveAt: p.PresenceRecordedAt, Day: p.PresenceDay, Presence: p}
}

// excuse tidak punya jam: effective = 00:00 lokal pada harinya
func excuseEntry(e *model.ExcuseEventModel, loc *time.Location) Entry {
	return Entry{Kind: status.Excused, EffectiveAt: dbtime.LocalMidnight(e.ExcuseDay, loc), Day: e.ExcuseDay, Excuse: e}
}

// Merge: k-way merge dua cursor desc. Berhenti setelah offset+limit item
// (plus satu intip untuk HasMore). Timestamp sama → presence duluan.
func Merge(
	ctx context.Context,
	presences store.Cursor[model.PresenceEventModel],
	excuses store.Cursor[model.ExcuseEventModel],
	loc *time.Location,
	offset, limit int,
) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	page := Page{Items: make([]Entry, 0, max(limit, 0)), Offset: offset, Limit: limit}
	if limit <= 0 {
		return page, nil
	}

	ph := &head[model.PresenceEventModel]{cur: presences}
	eh := &head[model.ExcuseEventModel]{cur: excuses}

	for produced := 0; ; produced++ {
		p, err := ph.peek(ctx)
		if err != nil {
			return page, err
		}
		e, err := eh.peek(ctx)
		if err != nil {
			return page, err
		}
		if p == nil && e == nil {
			return page, nil
		}
		if produced >= offset+limit {
			page.HasMore = true
			return page, nil
		}

		var next Entry
		switch {
		case e == nil:
			next = presenceEntry(ph.take())
		case p == nil:
			next = excuseEntry(eh.take(), loc)
		default:
			pe, ee := presenceEntry(p), excuseEntry(e, loc)
			if !pe.EffectiveAt.Before(ee.EffectiveAt) {
				ph.take()
				next = pe
			} else {
				eh.take()
				next = ee
			}
		}
		if produced >= offset {
			page.Items = append(page.Items, next)
		}
	}
}

// Query: buka dua stream dari store lalu Merge.
func Query(ctx context.Context, st store.Store, f store.EventFilter, loc *time.Location, offset, limit int) (Page, error) {
	pc := st.StreamPresence(ctx, f)
	defer pc.Close()
	ec := st.StreamExcuse(ctx, f)
	defer ec.Close()
	return Merge(ctx, pc, ec, loc, offset, limit)
}
