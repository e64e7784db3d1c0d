// Package persons: import roster (JSON / .xlsx) idempotent per DNI.
package persons

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/service"
	"absensi_backend/internals/features/attendance/store"
)

type PersonSeed struct {
	NationalID string `json:"national_id"`
	Code       string `json:"code"`
	LastNames  string `json:"last_names"`
	FirstNames string `json:"first_names"`
	Category   string `json:"category"`
	Email      string `json:"email"`
}

func (p PersonSeed) toModel() (model.PersonModel, error) {
	nid := strings.TrimSpace(p.NationalID)
	if !service.ValidNationalID(nid) {
		return model.PersonModel{}, fmt.Errorf("DNI %q tidak valid (8 digit)", p.NationalID)
	}
	cat, ok := model.ParsePersonCategory(p.Category)
	if !ok {
		return model.PersonModel{}, fmt.Errorf("DNI %s: kategori %q tidak dikenal", nid, p.Category)
	}
	last, first := strings.TrimSpace(p.LastNames), strings.TrimSpace(p.FirstNames)
	if last == "" && first == "" {
		return model.PersonModel{}, fmt.Errorf("DNI %s: nama kosong", nid)
	}
	return model.PersonModel{
		PersonNationalID: nid,
		PersonCode:       optString(p.Code),
		PersonLastNames:  last,
		PersonFirstNames: first,
		PersonCategory:   cat,
		PersonEmail:      optString(p.Email),
	}, nil
}

func optString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// LoadFile: .json (array PersonSeed) atau .xlsx (sheet pertama, baris 1 = header).
func LoadFile(path string) ([]PersonSeed, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var out []PersonSeed
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		return out, nil
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("format %q tidak didukung (json/xlsx)", filepath.Ext(path))
	}
}

// header yang dikenali (lowercase) → field
var xlsxHeaders = map[string]string{
	"dni": "national_id", "national_id": "national_id",
	"codigo": "code", "código": "code", "code": "code",
	"apellidos": "last_names", "last_names": "last_names",
	"nombres": "first_names", "first_names": "first_names",
	"condicion": "category", "condición": "category", "category": "category",
	"correo": "email", "email": "email",
}

func loadXLSX(path string) ([]PersonSeed, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook kosong")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := xlsxHeaders[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[field] = i
		}
	}
	if _, ok := cols["national_id"]; !ok {
		return nil, fmt.Errorf("kolom DNI tidak ditemukan di header")
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]PersonSeed, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if cell(row, "national_id") == "" {
			continue
		}
		out = append(out, PersonSeed{
			NationalID: cell(row, "national_id"),
			Code:       cell(row, "code"),
			LastNames:  cell(row, "last_names"),
			FirstNames: cell(row, "first_names"),
			Category:   cell(row, "category"),
			Email:      cell(row, "email"),
		})
	}
	return out, nil
}

// SeedPersonsFromFile: baris invalid dilewati (log), sisanya di-upsert sekaligus.
func SeedPersonsFromFile(ctx context.Context, st store.Store, path string) (int, error) {
	log.Println("📥 Membaca file roster:", path)

	seeds, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	persons := make([]model.PersonModel, 0, len(seeds))
	seen := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		p, err := s.toModel()
		if err != nil {
			log.Printf("⚠️ dilewati: %v", err)
			continue
		}
		if _, dup := seen[p.PersonNationalID]; dup {
			log.Printf("⚠️ DNI %s duplikat di file, dilewati.", p.PersonNationalID)
			continue
		}
		seen[p.PersonNationalID] = struct{}{}
		persons = append(persons, p)
	}
	if len(persons) == 0 {
		log.Println("ℹ️ Tidak ada data roster untuk diinsert.")
		return 0, nil
	}

	n, err := st.UpsertPersons(ctx, persons)
	if err != nil {
		return 0, err
	}
	log.Printf("✅ Berhasil upsert %d orang", n)
	return n, nil
}
