package route

import (
	"github.com/gofiber/fiber/v2"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/controller"
	"absensi_backend/internals/features/attendance/service"
	authMiddleware "absensi_backend/internals/middlewares/auth"
)

// 👤 Registrar/supervisor/admin: scan, manual, lookup, status
// Contoh akses: /api/u/attendance/scan
func AttendanceUserRoutes(api fiber.Router, svc *service.Service, scanLimiter fiber.Handler) {
	ctl := controller.NewAttendanceController(svc, nil)

	user := api.Group("/attendance",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("registrar asistencia"), constants.AllRoles),
	)

	if scanLimiter != nil {
		user.Post("/scan", scanLimiter, ctl.Scan)     // 📷 scan DNI / QR
		user.Post("/manual", scanLimiter, ctl.Manual) // ⌨️ input manual
	} else {
		user.Post("/scan", ctl.Scan)
		user.Post("/manual", ctl.Manual)
	}
	user.Get("/persons/lookup", ctl.Lookup) // 🔍 buscar
	user.Get("/status", ctl.Status)         // 📅 status hari ini / ?day=
}
