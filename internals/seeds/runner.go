package seeds

import (
	"context"
	"log"
	"time"

	"absensi_backend/internals/configs"
	"absensi_backend/internals/features/attendance/store"
	"absensi_backend/internals/seeds/persons"
)

// RunAllSeeds: SEED_PERSONS_FILE (json/xlsx). Aman dijalankan berulang.
func RunAllSeeds(st store.Store) {
	path := configs.GetEnv("SEED_PERSONS_FILE", "internals/seeds/persons/data_persons.json")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	//* Roster
	if _, err := persons.SeedPersonsFromFile(ctx, st, path); err != nil {
		log.Fatalf("❌ Seed roster gagal: %v", err)
	}
}
