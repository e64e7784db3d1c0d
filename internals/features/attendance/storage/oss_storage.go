// Package storage: adapter lampiran justificación ke object storage.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/service"
	helperOSS "absensi_backend/internals/helpers/oss"
)

// OSSStorage: gambar → WebP, PDF apa adanya.
// Key: {prefix}/{yyyy}/{mm}/{person_id}/{nama}_{ts}_{rand}.{ext}
type OSSStorage struct {
	OSS  *helperOSS.OSSService
	WebP helperOSS.WebPOptions
}

func NewOSSStorage(s *helperOSS.OSSService) *OSSStorage {
	return &OSSStorage{OSS: s, WebP: helperOSS.DefaultWebPOptionsFromEnv()}
}

func (st *OSSStorage) Store(ctx context.Context, personID uuid.UUID, day time.Time, a service.Attachment) (string, error) {
	data, name, ct := a.Data, a.Filename, "application/pdf"

	switch constants.DetectFileTypeFromExt(a.Filename) {
	case constants.FileTypeImage:
		out, err := helperOSS.ConvertToWebP(a.Data, a.Filename, st.WebP)
		if err != nil {
			return "", fmt.Errorf("convert webp: %w", err)
		}
		data, ct = out, "image/webp"
		name = strings.TrimSuffix(a.Filename, filepath.Ext(a.Filename)) + ".webp"
	case constants.FileTypePDF:
	default:
		return "", fmt.Errorf("unsupported attachment %q", a.Filename)
	}

	key := st.OSS.ObjectKey(name, day.Format("2006/01"), personID.String())
	return st.OSS.Put(ctx, key, data, ct)
}

// Discard: pindah ke spam/, dihapus permanen oleh reaper.
func (st *OSSStorage) Discard(ctx context.Context, ref string) error {
	_, err := st.OSS.MoveToSpam(ctx, ref)
	return err
}
