package route

import (
	"github.com/gofiber/fiber/v2"

	"absensi_backend/internals/features/geofence/controller"
	gs "absensi_backend/internals/features/geofence/service"
)

// GeofencePublicRoutes: dipasang di /api/public
func GeofencePublicRoutes(r fiber.Router, gate *gs.Gate) {
	ctl := controller.NewGeofenceController(gate, nil)
	r.Post("/geofence/check", ctl.Check)
}
