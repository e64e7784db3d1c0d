package route

import (
	"github.com/gofiber/fiber/v2"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/controller"
	"absensi_backend/internals/features/attendance/service"
	authMiddleware "absensi_backend/internals/middlewares/auth"
)

// 🛡️ Supervisor & admin: justificación, histori, laporan
// Contoh akses: /api/a/attendance/report?from=2025-01-06&to=2025-01-10
func AttendanceAdminRoutes(api fiber.Router, svc *service.Service) {
	ctl := controller.NewAttendanceController(svc, nil)

	admin := api.Group("/attendance",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorSupervisor("kelola asistencia"), constants.SupervisorAndAbove),
	)

	admin.Post("/excuses", ctl.CreateExcuse) // ➕ justificación (JSON / multipart)
	admin.Patch("/excuses/:id",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("ubah justificación"), constants.AdminOnly),
		ctl.PatchExcuse, // ✏️ hanya admin
	)

	admin.Get("/history", ctl.History)          // 📜 presence + excuse, terbaru dulu
	admin.Get("/report", ctl.Report)            // 📊 matriks JSON
	admin.Get("/report/excel", ctl.ReportExcel) // 📥 .xlsx
}

// ⏰ Trigger job internal (token bcrypt, tanpa JWT)
// Contoh akses: POST /internal/cron/weekly-report?dry_run=true
func AttendanceCronRoutes(api fiber.Router, svc *service.Service, secretHash string) {
	ctl := controller.NewCronController(svc, secretHash)
	api.Post("/weekly-report", ctl.WeeklyReport)
}
