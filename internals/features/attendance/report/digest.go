package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"absensi_backend/internals/features/attendance/store"
	"absensi_backend/internals/helpers/dbtime"
)

// Message: satu ringkasan mingguan untuk satu orang.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Dispatcher: pengiriman keluar (email dsb) di luar core.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// LogDispatcher: hanya menulis ke log (default tanpa transport email).
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, msg Message) error {
	log.Printf("[DIGEST] 📧 to=%s subject=%q (%d bytes)", msg.To, msg.Subject, len(msg.Body))
	return nil
}

const (
	DigestSent      = "sent"
	DigestDryRun    = "dry_run"
	DigestNoEmail   = "skipped_no_email"
	DigestNoRecords = "no_records"
	DigestFailed    = "failed"

	defaultDigestLimit = 50
)

type DigestOptions struct {
	Now    time.Time
	Limit  int // jumlah item yang dilaporkan balik (bukan yang dikirim)
	DryRun bool
	Roster store.RosterFilter
}

type DigestItem struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Outcome    string `json:"outcome"`
	Totals     Totals `json:"totals"`
}

type DigestResult struct {
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	DryRun    bool         `json:"dry_run"`
	Sent      int          `json:"sent"`
	Skipped   int          `json:"skipped"`
	NoRecords int          `json:"no_records"`
	Failed    int          `json:"failed"`
	Items     []DigestItem `json:"items"`
}

var weekdayES = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// WeeklyDigest: Senin–Jumat minggu berjalan, satu pesan per orang yang punya email
// dan punya minimal satu record (hadir/izin) di minggu itu.
func WeeklyDigest(ctx context.Context, st store.Store, d Dispatcher, loc *time.Location, opts DigestOptions) (*DigestResult, error) {
	if loc == nil {
		loc = dbtime.DefaultLocation()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultDigestLimit
	}
	if d == nil {
		d = LogDispatcher{}
	}

	monday, fridayEnd := dbtime.WorkWeek(opts.Now, loc)
	from, to := dbtime.DayOf(monday, loc), dbtime.DayOf(fridayEnd, loc)

	m, err := Build(ctx, st, Request{Roster: opts.Roster, From: from, To: to}, loc)
	if err != nil {
		return nil, err
	}

	res := &DigestResult{From: from, To: to, DryRun: opts.DryRun, Items: make([]DigestItem, 0)}
	for _, row := range m.Rows {
		item := DigestItem{
			NationalID: row.Person.PersonNationalID,
			Name:       row.Person.DisplayName(),
			Totals:     row.Totals,
		}
		email := ""
		if row.Person.PersonEmail != nil {
			email = strings.TrimSpace(*row.Person.PersonEmail)
		}
		item.Email = email

		switch {
		case email == "":
			item.Outcome = DigestNoEmail
			res.Skipped++
		case row.Totals.Present+row.Totals.Excused == 0:
			item.Outcome = DigestNoRecords
			res.NoRecords++
		case opts.DryRun:
			item.Outcome = DigestDryRun
			res.Sent++
		default:
			msg := Message{To: email, Subject: digestSubject(from, to), Body: digestBody(m, row)}
			if err := d.Dispatch(ctx, msg); err != nil {
				log.Printf("[DIGEST] ❌ gagal kirim ke %s: %v", email, err)
				item.Outcome = DigestFailed
				res.Failed++
			} else {
				item.Outcome = DigestSent
				res.Sent++
			}
		}
		if len(res.Items) < opts.Limit {
			res.Items = append(res.Items, item)
		}
	}
	log.Printf("[DIGEST] ✅ %s..%s sent=%d skipped=%d no_records=%d failed=%d dry_run=%v",
		dbtime.FormatDay(from), dbtime.FormatDay(to), res.Sent, res.Skipped, res.NoRecords, res.Failed, opts.DryRun)
	return res, nil
}

func digestSubject(from, to time.Time) string {
	return fmt.Sprintf("Resumen de asistencia %s - %s", from.Format("02/01"), to.Format("02/01/2006"))
}

func digestBody(m *Matrix, row Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", row.Person.DisplayName())
	fmt.Fprintf(&b, "%s\n\n", m.Title)
	for i, d := range m.Days {
		fmt.Fprintf(&b, "%-10s %s: %s\n", weekdayES[d.Weekday()], d.Format("02/01"), CellText(row.Cells[i]))
	}
	fmt.Fprintf(&b, "\nAsistió: %d · Justificado: %d · Faltó: %d\n", row.Totals.Present, row.Totals.Excused, row.Totals.Absent)
	return b.String()
}
