// Package report: matriks status per (orang, hari) + turunannya (Excel, digest mingguan).
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/status"
	"absensi_backend/internals/features/attendance/store"
	"absensi_backend/internals/helpers/dbtime"
)

// MaxRangeDays: batas rentang satu laporan (± satu kuartal).
const MaxRangeDays = 93

type Request struct {
	Roster store.RosterFilter
	From   time.Time
	To     time.Time
}

type Totals struct {
	Present int `json:"present"`
	Excused int `json:"excused"`
	Absent  int `json:"absent"`
}

func (t *Totals) add(k status.Kind) {
	switch k {
	case status.Present:
		t.Present++
	case status.Excused:
		t.Excused++
	default:
		t.Absent++
	}
}

func (t Totals) Sum() int { return t.Present + t.Excused + t.Absent }

type Row struct {
	Person model.PersonModel  `json:"person"`
	Cells  []status.DayStatus `json:"cells"`
	Totals Totals             `json:"totals"`
}

type LegendItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type Matrix struct {
	Title  string       `json:"title"`
	Legend []LegendItem `json:"legend"`

	From time.Time   `json:"from"`
	To   time.Time   `json:"to"`
	Days []time.Time `json:"days"`
	Rows []Row       `json:"rows"`

	DayTotals      []Totals                        `json:"day_totals"`
	CategoryTotals map[model.PersonCategory]Totals `json:"category_totals"`
	GeneratedAt    time.Time                       `json:"generated_at"`
}

type cellKey struct {
	person uuid.UUID
	day    string
}

// Validate: from <= to, maksimal MaxRangeDays hari.
func (r Request) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return model.NewValidationError("from", "date range is required")
	}
	from, to := dbtime.NormalizeDay(r.From), dbtime.NormalizeDay(r.To)
	if from.After(to) {
		return model.NewValidationError("from", "from must not be after to")
	}
	if n := len(dbtime.DaysBetween(from, to)); n > MaxRangeDays {
		return model.NewValidationError("to", fmt.Sprintf("range exceeds %d days", MaxRangeDays))
	}
	return nil
}

// Build: 1 query roster + 2 bulk query (paralel), lalu resolve per sel.
// Tidak ada query per sel.
func Build(ctx context.Context, st store.Store, req Request, loc *time.Location) (*Matrix, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = dbtime.DefaultLocation()
	}
	from, to := dbtime.NormalizeDay(req.From), dbtime.NormalizeDay(req.To)

	roster, err := st.ListPersons(ctx, req.Roster)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(roster))
	for i, p := range roster {
		ids[i] = p.PersonID
	}

	var (
		presences []model.PresenceEventModel
		excuses   []model.ExcuseEventModel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		presences, err = st.ListPresenceInRange(gctx, ids, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		excuses, err = st.ListExcuseInRange(gctx, ids, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pMap := make(map[cellKey]*model.PresenceEventModel, len(presences))
	for i := range presences {
		p := &presences[i]
		pMap[cellKey{p.PresencePersonID, dbtime.FormatDay(p.PresenceDay)}] = p
	}
	eMap := make(map[cellKey]*model.ExcuseEventModel, len(excuses))
	for i := range excuses {
		e := &excuses[i]
		eMap[cellKey{e.ExcusePersonID, dbtime.FormatDay(e.ExcuseDay)}] = e
	}

	days := dbtime.DaysBetween(from, to)
	m := &Matrix{
		Title:          Title(from, to),
		Legend:         Legend(),
		From:           from,
		To:             to,
		Days:           days,
		Rows:           make([]Row, 0, len(roster)),
		DayTotals:      make([]Totals, len(days)),
		CategoryTotals: make(map[model.PersonCategory]Totals, len(model.PersonCategories)),
		GeneratedAt:    time.Now().In(loc),
	}
	for _, c := range model.PersonCategories {
		m.CategoryTotals[c] = Totals{}
	}

	for _, p := range roster {
		row := Row{Person: p, Cells: make([]status.DayStatus, len(days))}
		for i, d := range days {
			k := cellKey{p.PersonID, dbtime.FormatDay(d)}
			ds := status.Resolve(pMap[k], eMap[k], loc)
			row.Cells[i] = ds
			row.Totals.add(ds.Kind)
			m.DayTotals[i].add(ds.Kind)
		}
		ct := m.CategoryTotals[p.PersonCategory]
		ct.Present += row.Totals.Present
		ct.Excused += row.Totals.Excused
		ct.Absent += row.Totals.Absent
		m.CategoryTotals[p.PersonCategory] = ct
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// CellCount: roster × hari.
func (m *Matrix) CellCount() int {
	n := 0
	for _, r := range m.Rows {
		n += len(r.Cells)
	}
	return n
}

func Title(from, to time.Time) string {
	if from.Equal(to) {
		return fmt.Sprintf("Reporte de asistencia del %s", from.Format("02/01/2006"))
	}
	return fmt.Sprintf("Reporte de asistencia del %s al %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
}

func Legend() []LegendItem {
	out := []LegendItem{
		{Code: "HH:MM", Label: "Asistió (hora de registro)"},
		{Code: string(status.Absent), Label: "Faltó"},
	}
	for _, c := range model.ExcuseCategories {
		out = append(out, LegendItem{Code: string(c), Label: "Justificado: " + c.Label()})
	}
	return out
}
