package helper

import (
	"context"
	"log"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/robfig/cron/v3"
)

type TrashReaperConfig struct {
	RetentionDays int
	CronSchedule  string
	DryRun        bool
}

func TrashReaperConfigFromEnv() TrashReaperConfig {
	return TrashReaperConfig{
		RetentionDays: envInt("RETENTION_DAYS", 30),
		CronSchedule:  getEnvOrDefault("REAPER_CRON", "15 2 * * *"),
		DryRun:        getEnv("REAPER_DRY_RUN") == "true",
	}
}

func getEnvOrDefault(key, def string) string {
	if v := getEnv(key); v != "" {
		return v
	}
	return def
}

// StartTrashReaperCron: hapus permanen objek spam/ yang lebih tua dari retensi.
// Panggil dari main.go kalau OSS aktif; Stop() saat shutdown.
func StartTrashReaperCron(s *OSSService, cfg TrashReaperConfig) (*cron.Cron, error) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
		if _, err := s.ReapSpam(ctx, retention, cfg.DryRun); err != nil {
			log.Printf("[TRASH-REAPER] OSS error: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[TRASH-REAPER] started schedule=%q retention=%dd dryRun=%v",
		cfg.CronSchedule, cfg.RetentionDays, cfg.DryRun)
	c.Start()
	return c, nil
}

// ReapSpam: return jumlah objek yang dihapus (atau akan dihapus kalau dryRun).
func (s *OSSService) ReapSpam(ctx context.Context, retention time.Duration, dryRun bool) (int, error) {
	threshold := s.now().Add(-retention)
	prefix := SpamPrefix + "/"

	marker := oss.Marker("")
	var keysToDelete []string
	total := 0
	for {
		lor, err := s.Bucket.ListObjects(oss.Prefix(prefix), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return 0, err
		}
		for _, obj := range lor.Objects {
			total++
			if obj.Key != "" && obj.LastModified.Before(threshold) {
				keysToDelete = append(keysToDelete, obj.Key)
			}
		}
		if !lor.IsTruncated {
			break
		}
		marker = oss.Marker(lor.NextMarker)
	}

	if len(keysToDelete) == 0 {
		log.Printf("[OSS-REAPER] nothing to delete; scanned=%d under %q", total, prefix)
		return 0, nil
	}
	if dryRun {
		log.Printf("[OSS-REAPER] DRY-RUN would delete %d/%d objects under %q", len(keysToDelete), total, prefix)
		return len(keysToDelete), nil
	}

	deleted := 0
	for i := 0; i < len(keysToDelete); i += 1000 {
		end := min(i+1000, len(keysToDelete))
		batch := keysToDelete[i:end]
		if _, err := s.Bucket.DeleteObjects(batch, oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			log.Printf("[OSS-REAPER] delete batch %d-%d gagal: %v", i, end, err)
			continue
		}
		deleted += len(batch)
	}
	log.Printf("[OSS-REAPER] deleted %d objects (scanned=%d) under %q", deleted, total, prefix)
	return deleted, nil
}
