package service

import (
	"regexp"
	"strings"

	"absensi_backend/internals/features/attendance/model"
)

// 8 digit berdiri sendiri (tidak menempel digit lain)
var nationalIDRe = regexp.MustCompile(`(?:^|\D)(\d{8})(?:\D|$)`)

// ExtractNationalID: ambil DNI 8 digit pertama dari teks hasil scan
// (QR/barcode sering membawa prefix/suffix).
func ExtractNationalID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.NewValidationError("code", "code is required")
	}
	m := nationalIDRe.FindStringSubmatch(raw)
	if m == nil {
		return "", model.NewValidationError("code", "no 8-digit identifier found")
	}
	return m[1], nil
}

// ValidNationalID: tepat 8 digit.
func ValidNationalID(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
