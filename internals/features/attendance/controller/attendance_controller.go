// file: internals/features/attendance/controller/attendance_controller.go
package controller

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	d "absensi_backend/internals/features/attendance/dto"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/service"
	helper "absensi_backend/internals/helpers"
	helperAuth "absensi_backend/internals/helpers/auth"
	"absensi_backend/internals/helpers/dbtime"
)

/* =========================
   Controller & Constructor
   ========================= */

type AttendanceController struct {
	Svc      *service.Service
	Validate *validator.Validate
}

func NewAttendanceController(svc *service.Service, v *validator.Validate) *AttendanceController {
	if v == nil {
		v = NewValidator()
	}
	return &AttendanceController{Svc: svc, Validate: v}
}

// NewValidator: nama field di error = tag json
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

/* =========================
   Small helpers
   ========================= */

// clientIP: X-Forwarded-For hanya dipercaya dari TrustedProxies (diurus fiber
// lewat ProxyHeader + EnableTrustedProxyCheck); selain itu alamat koneksi.
func clientIP(c *fiber.Ctx) string {
	return c.IP()
}

func userAgent(c *fiber.Ctx) string {
	ua := strings.TrimSpace(c.Get(fiber.HeaderUserAgent))
	if len(ua) > 512 {
		ua = ua[:512]
	}
	return ua
}

// parseDayQuery: "" → zero time (caller pakai default)
func parseDayQuery(c *fiber.Ctx, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := dbtime.ParseDay(raw)
	if err != nil {
		return time.Time{}, model.NewValidationError(name, "date must be YYYY-MM-DD")
	}
	return day, nil
}

// writeServiceError: taksonomi error domain → HTTP.
// Duplikat & konflik = peringatan (rutin), bukan error.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, map[string][]string{ve.Field: {ve.Reason}})
	case errors.Is(err, model.ErrDuplicate):
		return helper.JsonWarning(c, fiber.StatusConflict, "ALREADY_RECORDED", "Ya existe un registro para esta persona en ese día.", nil)
	case errors.Is(err, model.ErrPresenceConflict):
		return helper.JsonWarning(c, fiber.StatusConflict, "PRESENCE_CONFLICT", "La persona ya registró asistencia ese día; no se puede justificar.", nil)
	case errors.Is(err, model.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Persona o registro no encontrado")
	case errors.Is(err, model.ErrForbidden):
		return helper.JsonError(c, fiber.StatusForbidden, "No autorizado para esta operación")
	case errors.Is(err, model.ErrConcurrencyTimeout):
		return helper.JsonRetry(c, 1, "Registro ocupado, intente de nuevo")
	case errors.Is(err, model.ErrValidation):
		return helper.JsonValidationError(c, map[string][]string{"_": {err.Error()}})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Error interno")
	}
}

/* =========================
   POST /attendance/scan
   ========================= */

func (ctl *AttendanceController) Scan(c *fiber.Ctx) error {
	var req d.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsMap(err))
	}

	res, err := ctl.Svc.Submit(c.UserContext(), helperAuth.ActorFromCtx(c), req.ToInput(clientIP(c), userAgent(c)))
	if err != nil {
		return writeServiceError(c, err)
	}
	return ctl.writePresence(c, res)
}

/* =========================
   POST /attendance/manual
   ========================= */

func (ctl *AttendanceController) Manual(c *fiber.Ctx) error {
	var req d.ManualRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsMap(err))
	}

	res, err := ctl.Svc.Submit(c.UserContext(), helperAuth.ActorFromCtx(c), req.ToInput(clientIP(c), userAgent(c)))
	if err != nil {
		return writeServiceError(c, err)
	}
	return ctl.writePresence(c, res)
}

func (ctl *AttendanceController) writePresence(c *fiber.Ctx, res *service.PresenceResult) error {
	body := d.FromPresenceResult(res, ctl.Svc.Location())
	if res.Outcome == service.OutcomeAlreadyRecorded {
		return helper.JsonWarning(c, fiber.StatusOK, "ALREADY_RECORDED", "La asistencia de hoy ya fue registrada.", body)
	}
	return helper.JsonCreated(c, "Asistencia registrada", body)
}

/* =========================
   GET /attendance/persons/lookup?code=
   ========================= */

func (ctl *AttendanceController) Lookup(c *fiber.Ctx) error {
	p, err := ctl.Svc.LookupPerson(c.UserContext(), helperAuth.ActorFromCtx(c), c.Query("code"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", d.FromPersonModel(p))
}

/* =========================
   GET /attendance/status?code=&day=
   ========================= */

func (ctl *AttendanceController) Status(c *fiber.Ctx) error {
	day, err := parseDayQuery(c, "day")
	if err != nil {
		return writeServiceError(c, err)
	}
	res, err := ctl.Svc.DayStatus(c.UserContext(), helperAuth.ActorFromCtx(c), c.Query("code"), day)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", d.FromDayStatus(res))
}
