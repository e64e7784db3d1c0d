// file: internals/features/attendance/controller/cron_controller.go
package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"absensi_backend/internals/features/attendance/report"
	"absensi_backend/internals/features/attendance/scheduler"
	"absensi_backend/internals/features/attendance/service"
	helper "absensi_backend/internals/helpers"
)

const HeaderCronToken = "X-Cron-Token"

// CronController: trigger job dari luar (mis. scheduler platform).
// Token dicocokkan dengan hash bcrypt, plaintext tidak pernah disimpan.
type CronController struct {
	Svc        *service.Service
	SecretHash []byte
}

func NewCronController(svc *service.Service, secretHash string) *CronController {
	return &CronController{Svc: svc, SecretHash: []byte(strings.TrimSpace(secretHash))}
}

func (ctl *CronController) authorized(c *fiber.Ctx) bool {
	if len(ctl.SecretHash) == 0 {
		return false
	}
	token := strings.TrimSpace(c.Get(HeaderCronToken))
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	}
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(ctl.SecretHash, []byte(token)) == nil
}

/* =========================
   POST /internal/cron/weekly-report?limit=&dry_run=
   ========================= */

func (ctl *CronController) WeeklyReport(c *fiber.Ctx) error {
	if !ctl.authorized(c) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Token cron tidak valid")
	}

	opts := report.DigestOptions{}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return helper.JsonValidationError(c, map[string][]string{"limit": {"limit must be a non-negative integer"}})
		}
		opts.Limit = n
	}
	opts.DryRun = c.QueryBool("dry_run", false)

	res, err := scheduler.RunWeeklyReport(c.UserContext(), ctl.Svc, opts)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "Resumen semanal procesado", res)
}
