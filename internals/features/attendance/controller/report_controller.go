// file: internals/features/attendance/controller/report_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	d "absensi_backend/internals/features/attendance/dto"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/report"
	"absensi_backend/internals/features/attendance/store"
	helper "absensi_backend/internals/helpers"
	helperAuth "absensi_backend/internals/helpers/auth"
)

const (
	historyDefaultPerPage = 20
	historyMaxPerPage     = 100
	mimeXLSX              = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// parseRoster: ?q=&category=&person_id=a,b
func parseRoster(c *fiber.Ctx) (store.RosterFilter, error) {
	f := store.RosterFilter{Query: strings.TrimSpace(c.Query("q"))}

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		cat, ok := model.ParsePersonCategory(raw)
		if !ok {
			return f, model.NewValidationError("category", "category must be NOMBRADO or CONTRATADO")
		}
		f.Category = cat
	}

	if raw := strings.TrimSpace(c.Query("person_id")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return f, model.NewValidationError("person_id", "invalid uuid: "+part)
			}
			f.PersonIDs = append(f.PersonIDs, id)
		}
	}
	return f, nil
}

func parseRange(c *fiber.Ctx) (from, to time.Time, err error) {
	if from, err = parseDayQuery(c, "from"); err != nil {
		return
	}
	to, err = parseDayQuery(c, "to")
	return
}

/* =========================
   GET /attendance/history
   ========================= */

func (ctl *AttendanceController) History(c *fiber.Ctx) error {
	roster, err := parseRoster(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	from, to, err := parseRange(c)
	if err != nil {
		return writeServiceError(c, err)
	}

	f := store.EventFilter{Roster: roster}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}

	p := helper.ResolvePaging(c, historyDefaultPerPage, historyMaxPerPage)
	page, err := ctl.Svc.History(c.UserContext(), helperAuth.ActorFromCtx(c), f, p.Offset, p.Limit)
	if err != nil {
		return writeServiceError(c, err)
	}

	items := d.FromHistoryEntries(page.Items, ctl.Svc.Location())
	return helper.JsonList(c, "ok", items, helper.BuildPagination(p, len(items), page.HasMore))
}

/* =========================
   GET /attendance/report(.xlsx)
   ========================= */

func (ctl *AttendanceController) buildReport(c *fiber.Ctx) (*report.Matrix, error) {
	roster, err := parseRoster(c)
	if err != nil {
		return nil, err
	}
	from, to, err := parseRange(c)
	if err != nil {
		return nil, err
	}
	// satu sisi saja → laporan satu hari
	switch {
	case from.IsZero() && !to.IsZero():
		from = to
	case to.IsZero() && !from.IsZero():
		to = from
	}
	return ctl.Svc.Report(c.UserContext(), helperAuth.ActorFromCtx(c), report.Request{Roster: roster, From: from, To: to})
}

func (ctl *AttendanceController) Report(c *fiber.Ctx) error {
	m, err := ctl.buildReport(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", m)
}

func (ctl *AttendanceController) ReportExcel(c *fiber.Ctx) error {
	m, err := ctl.buildReport(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	data, err := report.RenderExcel(m)
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+report.ExcelFilename(m)+`"`)
	return c.Status(fiber.StatusOK).Send(data)
}
