package persons

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/store"
)

func TestSeedPersonsFromJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persons.json")
	body := `[
		{"national_id": "40123456", "last_names": "Núñez", "first_names": "María", "category": "nombrado", "email": "m@example.org"},
		{"national_id": "4012", "last_names": "Corto", "first_names": "DNI", "category": "NOMBRADO"},
		{"national_id": "41234567", "last_names": "Quispe", "first_names": "Juan", "category": "OTRO"},
		{"national_id": "40123456", "last_names": "Dup", "first_names": "Dup", "category": "CONTRATADO"}
	]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	st := store.NewMemStore(time.Second)
	ctx := context.Background()
	n, err := SeedPersonsFromFile(ctx, st, path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("upserted %d, want 1", n)
	}

	// idempotent: jalankan lagi, tetap satu orang
	if _, err := SeedPersonsFromFile(ctx, st, path); err != nil {
		t.Fatal(err)
	}
	all, err := st.ListPersons(ctx, store.RosterFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].PersonCategory != model.PersonCategoryAppointed {
		t.Fatalf("unexpected roster %+v", all)
	}
}

func TestSeedPersonsFromXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"DNI", "Apellidos", "Nombres", "Condición", "Correo"},
		{"40123456", "Núñez Paredes", "María José", "NOMBRADO", ""},
		{"41234567", "Quispe", "Juan", "CONTRATADO", "jq@example.org"},
		{"", "sin", "dni", "NOMBRADO", ""},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "persons.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	seeds, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seeds) != 2 {
		t.Fatalf("loaded %d rows, want 2", len(seeds))
	}

	st := store.NewMemStore(time.Second)
	if _, err := SeedPersonsFromFile(context.Background(), st, path); err != nil {
		t.Fatal(err)
	}
	p, err := st.FindPersonByNationalID(context.Background(), "41234567")
	if err != nil {
		t.Fatal(err)
	}
	if p.PersonEmail == nil || *p.PersonEmail != "jq@example.org" || p.PersonCategory != model.PersonCategoryContracted {
		t.Fatalf("unexpected person %+v", p)
	}
}

func TestLoadFileRejectsUnknownFormat(t *testing.T) {
	if _, err := LoadFile("roster.csv"); err == nil {
		t.Fatal("expected error")
	}
}
