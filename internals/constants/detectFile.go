package constants

import (
	"path/filepath"
	"strings"
)

// Jenis file lampiran
const (
	FileTypeUnknown = 99
	FileTypePDF     = 4
	FileTypeImage   = 6
)

func DetectFileTypeFromExt(filename string) int {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return FileTypePDF
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileTypeImage
	default:
		return FileTypeUnknown // tidak diterima sebagai lampiran
	}
}

// MIME yang cocok per jenis (hasil sniff http.DetectContentType)
var AllowedMIMEByType = map[int][]string{
	FileTypePDF:   {"application/pdf"},
	FileTypeImage: {"image/png", "image/jpeg", "image/webp"},
}
