package status

import (
	"testing"
	"time"

	"absensi_backend/internals/features/attendance/model"
)

func TestResolveAllCombinations(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	at := time.Date(2025, 3, 4, 13, 15, 0, 0, time.UTC) // 08:15 Lima
	presence := &model.PresenceEventModel{PresenceRecordedAt: at, PresenceChannel: model.PresenceChannelScan}
	excuse := &model.ExcuseEventModel{ExcuseCategory: model.ExcuseCategoryMedicalLeave, ExcuseDetail: "reposo"}

	cases := []struct {
		name     string
		presence *model.PresenceEventModel
		excuse   *model.ExcuseEventModel
		want     Kind
		cell     string
	}{
		{"presence only", presence, nil, Present, "08:15"},
		{"excuse only", nil, excuse, Excused, "MEDICAL_LEAVE"},
		{"both resolves to present", presence, excuse, Present, "08:15"},
		{"neither", nil, nil, Absent, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.presence, tc.excuse, lima)
			if got.Kind != tc.want {
				t.Fatalf("kind: want %s, got %s", tc.want, got.Kind)
			}
			if got.Cell() != tc.cell {
				t.Fatalf("cell: want %q, got %q", tc.cell, got.Cell())
			}
		})
	}
}

func TestResolveExcuseCarriesDetail(t *testing.T) {
	got := Resolve(nil, &model.ExcuseEventModel{
		ExcuseCategory: model.ExcuseCategoryCommission,
		ExcuseDetail:   "Comisión UGEL",
	}, time.UTC)
	if got.Label != "Comisión de servicio" || got.Detail != "Comisión UGEL" {
		t.Fatalf("unexpected excuse status %+v", got)
	}
	if got.RecordedAt != nil || got.Time != nil {
		t.Fatalf("excused status must not carry a time")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	p := &model.PresenceEventModel{PresenceRecordedAt: time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)}
	e := &model.ExcuseEventModel{ExcuseCategory: model.ExcuseCategoryOther}
	first := Resolve(p, e, time.UTC)
	for i := 0; i < 100; i++ {
		if got := Resolve(p, e, time.UTC); got.Kind != first.Kind || got.Cell() != first.Cell() {
			t.Fatalf("non-deterministic result on iteration %d", i)
		}
	}
}
