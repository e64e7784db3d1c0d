package configs

import (
	"log"
	"time"
)

// AppConfig: snapshot ENV yang dipakai main.go & route.
type AppConfig struct {
	Port        string
	Timezone    string
	StoreDriver string // postgres | memory
	LockTimeout time.Duration
	JWTSecret   string

	GeofenceLat     float64
	GeofenceLng     float64
	GeofenceRadiusM float64

	AttachmentMaxMB int
	OSSPrefix       string

	ReportCron     string
	ReportDryRun   bool
	ReportLimit    int
	CronSecretHash string

	ScanRateLimit int // request / menit / IP

	// TrustedProxies: IP/CIDR reverse proxy yang boleh mengisi X-Forwarded-For.
	// Kosong → header diabaikan, IP = alamat koneksi.
	TrustedProxies []string
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

func LoadAppConfig() AppConfig {
	cfg := AppConfig{
		Port:        GetEnv("PORT", "3000"),
		Timezone:    GetEnv("APP_TIMEZONE", "America/Lima"),
		StoreDriver: GetEnv("STORE_DRIVER", StoreDriverPostgres),
		LockTimeout: GetEnvDuration("LOCK_TIMEOUT", 3*time.Second),
		JWTSecret:   GetEnv("JWT_SECRET"),

		GeofenceLat:     GetEnvFloat("GEOFENCE_LAT", 0),
		GeofenceLng:     GetEnvFloat("GEOFENCE_LNG", 0),
		GeofenceRadiusM: GetEnvFloat("GEOFENCE_RADIUS_M", 0),

		AttachmentMaxMB: GetEnvInt("ATTACHMENT_MAX_MB", 5),
		OSSPrefix:       GetEnv("OSS_PREFIX", "justificaciones"),

		ReportCron:     GetEnv("REPORT_CRON", "0 18 * * 5"),
		ReportDryRun:   GetEnvBool("REPORT_DRY_RUN", false),
		ReportLimit:    GetEnvInt("REPORT_LIMIT", 50),
		CronSecretHash: GetEnv("CRON_SECRET_HASH"),

		ScanRateLimit: GetEnvInt("SCAN_RATE_LIMIT", 30),

		TrustedProxies: GetEnvList("TRUSTED_PROXIES"),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		log.Printf("[WARN] STORE_DRIVER=%q tidak dikenal, pakai %s", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 3 * time.Second
	}
	if len(cfg.TrustedProxies) == 0 {
		log.Println("⚠️ TRUSTED_PROXIES kosong, X-Forwarded-For diabaikan")
	}
	if cfg.CronSecretHash == "" {
		log.Println("⚠️ CRON_SECRET_HASH kosong, endpoint cron internal selalu 401")
	}
	return cfg
}

func (c AppConfig) AttachmentMaxBytes() int64 {
	if c.AttachmentMaxMB <= 0 {
		return 5 << 20
	}
	return int64(c.AttachmentMaxMB) << 20
}
