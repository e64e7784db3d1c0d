// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	attendanceRoutes "absensi_backend/internals/features/attendance/route"
	"absensi_backend/internals/features/attendance/service"
	geofenceRoutes "absensi_backend/internals/features/geofence/route"
	gs "absensi_backend/internals/features/geofence/service"
	"absensi_backend/internals/middlewares"
	authMiddleware "absensi_backend/internals/middlewares/auth"
)

var startTime time.Time

type Deps struct {
	Service        *service.Service
	Gate           *gs.Gate
	Registry       *prometheus.Registry
	Ping           func() error
	JWTSecret      string
	CronSecretHash string
	ScanRateLimit  int
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, d.Ping, d.Registry)

	jwtOpts := authMiddleware.AuthJWTOpts{Secret: d.JWTSecret, AllowCookieFallback: true}

	// ===================== GROUPS =====================

	// PUBLIC → JWT opsional
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", authMiddleware.OptionalAuthJWT(jwtOpts))

	// PRIVATE (USER) → semua role staff
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", authMiddleware.AuthJWT(jwtOpts))

	// ADMIN → supervisor & admin (cek role per route)
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", authMiddleware.AuthJWT(jwtOpts))

	// INTERNAL → token bcrypt, tanpa JWT
	log.Println("[INFO] Setting up INTERNAL cron group...")
	internal := app.Group("/internal/cron")

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Geofence routes...")
	geofenceRoutes.GeofencePublicRoutes(public.Group("", middlewares.GeofenceRateLimiter()), d.Gate)

	log.Println("[INFO] Mounting Attendance routes...")
	attendanceRoutes.AttendanceUserRoutes(private, d.Service, middlewares.ScanRateLimiter(d.ScanRateLimit))
	attendanceRoutes.AttendanceAdminRoutes(admin, d.Service)
	attendanceRoutes.AttendanceCronRoutes(internal, d.Service, d.CronSecretHash)
}
