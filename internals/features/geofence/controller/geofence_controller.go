// file: internals/features/geofence/controller/geofence_controller.go
package controller

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	gs "absensi_backend/internals/features/geofence/service"
	helper "absensi_backend/internals/helpers"
)

type GeofenceController struct {
	Gate     *gs.Gate
	Validate *validator.Validate
}

func NewGeofenceController(g *gs.Gate, v *validator.Validate) *GeofenceController {
	if v == nil {
		v = validator.New()
	}
	return &GeofenceController{Gate: g, Validate: v}
}

type CheckRequest struct {
	Lat       *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng       *float64 `json:"lng" validate:"omitempty,longitude"`
	AccuracyM float64  `json:"accuracy_m" validate:"gte=0"`
	Status    string   `json:"status" validate:"required,oneof=ok denied unavailable"`
	Username  string   `json:"username" validate:"max=150"`
}

/* =========================
   POST /api/public/geofence/check
   ========================= */

func (ctl *GeofenceController) Check(c *fiber.Ctx) error {
	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "Payload tidak valid")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsMap(err))
	}

	reading := gs.Reading{AccuracyM: req.AccuracyM, Status: req.Status}
	if req.Lat != nil && req.Lng != nil {
		reading.Point = gs.Point{Lat: *req.Lat, Lng: *req.Lng}
	} else if req.Status == gs.GeoOK {
		reading.Status = gs.GeoUnavailable
	}

	d := ctl.Gate.Check(reading)
	log.Printf("[GEOFENCE] user=%q ip=%s allowed=%v reason=%s", req.Username, c.IP(), d.Allowed, d.Reason)
	if !d.Allowed {
		return helper.JsonWarning(c, fiber.StatusForbidden, "OUTSIDE_GEOFENCE", "Ubicación fuera del área permitida", d)
	}
	return helper.JsonOK(c, "ok", d)
}
