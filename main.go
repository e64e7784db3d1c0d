package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"absensi_backend/internals/configs"
	database "absensi_backend/internals/databases"
	"absensi_backend/internals/features/attendance/scheduler"
	"absensi_backend/internals/features/attendance/service"
	"absensi_backend/internals/features/attendance/storage"
	"absensi_backend/internals/features/attendance/store"
	gs "absensi_backend/internals/features/geofence/service"
	helper "absensi_backend/internals/helpers"
	helperAuth "absensi_backend/internals/helpers/auth"
	"absensi_backend/internals/helpers/dbtime"
	helperOSS "absensi_backend/internals/helpers/oss"
	middlewares "absensi_backend/internals/middlewares"
	routes "absensi_backend/internals/route"
	"absensi_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	cfg := configs.LoadAppConfig()
	loc := dbtime.SetDefaultLocation(cfg.Timezone)
	log.Printf("✅ Timezone aplikasi: %s", loc)

	// 🌱 `go run . seed` → import roster lalu keluar
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		runSeed(cfg)
		return
	}

	// 🗄️ store: postgres (default) atau memory (dev/demo)
	var (
		st   store.Store
		ping func() error
	)
	if cfg.StoreDriver == configs.StoreDriverMemory {
		log.Println("⚠️ STORE_DRIVER=memory, data hilang saat restart")
		st = store.NewMemStore(cfg.LockTimeout)
	} else {
		database.ConnectDB()
		database.AutoMigrate()
		database.TunePool()
		database.WarmUpQueries()
		st = store.NewGormStore(database.DB, cfg.LockTimeout)
		ping = database.Ping
	}

	// 📈 metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []service.Option{
		service.WithLocation(loc),
		service.WithMetrics(service.NewMetrics(reg)),
		service.WithAttachmentPolicy(service.AttachmentPolicy{MaxBytes: cfg.AttachmentMaxBytes()}),
	}

	// ☁️ OSS opsional: tanpa ENV → upload lampiran ditolak, attachment_ref tetap bisa
	var jobs []*cron.Cron
	if oss, err := helperOSS.NewOSSServiceFromEnv(cfg.OSSPrefix); err != nil {
		log.Printf("[WARN] OSS nonaktif: %v", err)
	} else {
		opts = append(opts, service.WithStorage(storage.NewOSSStorage(oss)))
		if c, err := helperOSS.StartTrashReaperCron(oss, helperOSS.TrashReaperConfigFromEnv()); err != nil {
			log.Printf("[WARN] trash reaper gagal start: %v", err)
		} else {
			jobs = append(jobs, c)
		}
	}

	svc := service.New(st, helperAuth.DefaultRoleAuthorizer(), opts...)

	gate, err := gs.NewGate(gs.Point{Lat: cfg.GeofenceLat, Lng: cfg.GeofenceLng}, cfg.GeofenceRadiusM)
	if err != nil {
		log.Fatalf("❌ Geofence config: %v", err)
	}

	// ⏱ scheduler setelah store siap
	if c, err := scheduler.StartWeeklyReportCron(svc, scheduler.WeeklyReportConfig{
		Schedule: cfg.ReportCron,
		DryRun:   cfg.ReportDryRun,
		Limit:    cfg.ReportLimit,
	}); err != nil {
		log.Fatalf("❌ REPORT_CRON tidak valid: %v", err)
	} else {
		jobs = append(jobs, c)
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.FromFiberError,
		BodyLimit:               int(cfg.AttachmentMaxBytes()) + 1<<20,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.TrustedProxies,
		EnableIPValidation:      true,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (selaras dengan statement_timeout di DB)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app, cfg.Timezone)

	// ✅ Routes
	routes.SetupRoutes(app, routes.Deps{
		Service:        svc,
		Gate:           gate,
		Registry:       reg,
		Ping:           ping,
		JWTSecret:      cfg.JWTSecret,
		CronSecretHash: cfg.CronSecretHash,
		ScanRateLimit:  cfg.ScanRateLimit,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: HTTP → cron → audit → DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	for _, c := range jobs {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	svc.FlushAudit()
	database.Close()
}

// runSeed: koneksi terpisah (application_name absensi_seeder), tanpa warm-up/pool tuning.
func runSeed(cfg configs.AppConfig) {
	if cfg.StoreDriver == configs.StoreDriverMemory {
		log.Println("⚠️ STORE_DRIVER=memory, hasil seed hanya untuk validasi file")
		seeds.RunAllSeeds(store.NewMemStore(cfg.LockTimeout))
		return
	}
	database.DB = configs.InitSeederDB()
	database.AutoMigrate()
	seeds.RunAllSeeds(store.NewGormStore(database.DB, cfg.LockTimeout))
	database.Close()
}
