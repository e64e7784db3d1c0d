package service

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/model"
)

// Attachment: file pendukung excuse (sudah dibaca ke memori oleh controller).
type Attachment struct {
	Filename    string
	ContentType string // yang dideklarasikan client
	Size        int64
	Data        []byte
}

// AttachmentStorage: penyimpanan file di luar core. Mengembalikan URI opaque
// yang disimpan apa adanya di excuse_attachment_ref.
type AttachmentStorage interface {
	Store(ctx context.Context, personID uuid.UUID, day time.Time, a Attachment) (string, error)
}

const defaultAttachmentMaxBytes = 5 << 20

type AttachmentPolicy struct {
	MaxBytes int64
}

func (p AttachmentPolicy) maxBytes() int64 {
	if p.MaxBytes <= 0 {
		return defaultAttachmentMaxBytes
	}
	return p.MaxBytes
}

// Validate: ekstensi, ukuran, MIME (deklarasi + sniff). Isi file tidak diinterpretasi.
func (p AttachmentPolicy) Validate(a Attachment) error {
	kind := constants.DetectFileTypeFromExt(a.Filename)
	allowed, ok := constants.AllowedMIMEByType[kind]
	if !ok {
		return model.NewValidationError("file", "only pdf, png, jpg, jpeg or webp files are accepted")
	}

	size := a.Size
	if size <= 0 {
		size = int64(len(a.Data))
	}
	if size == 0 {
		return model.NewValidationError("file", "file is empty")
	}
	if size > p.maxBytes() {
		return model.NewValidationError("file", fmt.Sprintf("file exceeds %d MB", p.maxBytes()>>20))
	}

	if declared := baseMIME(a.ContentType); declared != "" && declared != "application/octet-stream" {
		if !containsMIME(allowed, declared) {
			return model.NewValidationError("file", "declared content type does not match the file extension")
		}
	}

	head := a.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if sniffed := baseMIME(http.DetectContentType(head)); !containsMIME(allowed, sniffed) {
		return model.NewValidationError("file", "file content does not match the file extension")
	}
	return nil
}

func baseMIME(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(ct)
}

func containsMIME(list []string, v string) bool {
	// image/jpg tidak baku tapi sering dikirim browser lama
	if v == "image/jpg" {
		v = "image/jpeg"
	}
	for _, it := range list {
		if it == v {
			return true
		}
	}
	return false
}

// AttachmentDiscarder: opsional di storage. Dipanggil untuk lampiran yang
// tidak lagi direferensikan (commit gagal / diganti saat amend).
type AttachmentDiscarder interface {
	Discard(ctx context.Context, ref string) error
}

func (s *Service) discardAttachment(ref string) {
	d, ok := s.storage.(AttachmentDiscarder)
	if !ok || strings.TrimSpace(ref) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Discard(ctx, ref); err != nil {
		log.Printf("[ATTACHMENT] ⚠️ gagal buang %s: %v", ref, err)
	}
}
