// Package scheduler: job terjadwal (ringkasan mingguan).
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/report"
	"absensi_backend/internals/features/attendance/service"
)

// SystemActor: identitas job internal di audit & authorizer.
var SystemActor = model.Actor{UserID: "system", Username: "cron", Role: constants.RoleAdmin}

type WeeklyReportConfig struct {
	Schedule string // cron 5 field, zona = lokasi service
	DryRun   bool
	Limit    int
	Timeout  time.Duration
}

func (c WeeklyReportConfig) withDefaults() WeeklyReportConfig {
	if c.Schedule == "" {
		c.Schedule = "0 18 * * 5"
	}
	if c.Timeout <= 0 {
		c.Timeout = 4 * time.Minute
	}
	return c
}

// RunWeeklyReport: satu eksekusi digest (dipakai cron & endpoint internal).
func RunWeeklyReport(ctx context.Context, svc *service.Service, opts report.DigestOptions) (*report.DigestResult, error) {
	res, err := svc.WeeklyDigest(ctx, SystemActor, opts)
	if err != nil {
		log.Printf("[WEEKLY-REPORT] ❌ gagal: %v", err)
		return nil, err
	}
	log.Printf("[WEEKLY-REPORT] ✅ %s..%s sent=%d skipped=%d no_records=%d failed=%d dry=%v",
		res.From.Format("2006-01-02"), res.To.Format("2006-01-02"),
		res.Sent, res.Skipped, res.NoRecords, res.Failed, res.DryRun)
	return res, nil
}

// StartWeeklyReportCron: panggil dari main.go; Stop() saat shutdown.
func StartWeeklyReportCron(svc *service.Service, cfg WeeklyReportConfig) (*cron.Cron, error) {
	cfg = cfg.withDefaults()

	c := cron.New(
		cron.WithLocation(svc.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		_, _ = RunWeeklyReport(ctx, svc, report.DigestOptions{Limit: cfg.Limit, DryRun: cfg.DryRun})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[WEEKLY-REPORT] started schedule=%q tz=%s dryRun=%v", cfg.Schedule, svc.Location(), cfg.DryRun)
	c.Start()
	return c, nil
}
