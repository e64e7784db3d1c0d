package service

import (
	"errors"
	"testing"

	"absensi_backend/internals/features/attendance/model"
)

func TestExtractNationalID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"12345678", "12345678", true},
		{"  12345678\n", "12345678", true},
		{"DNI:12345678|PEREZ", "12345678", true},
		{"https://x.gob.pe/v?d=87654321&t=1", "87654321", true},
		{"ab 11112222 cd 33334444", "11112222", true},
		{"1234567", "", false},
		{"123456789", "", false},
		{"no digits", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ExtractNationalID(tc.raw)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q: want %s, got %s (%v)", tc.raw, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, model.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %q %v", tc.raw, got, err)
		}
	}
}

func TestValidNationalID(t *testing.T) {
	if !ValidNationalID("00001234") || ValidNationalID("0000123a") || ValidNationalID("123") {
		t.Fatal("unexpected national id validation")
	}
}
