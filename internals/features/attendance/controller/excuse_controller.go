// file: internals/features/attendance/controller/excuse_controller.go
package controller

import (
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	d "absensi_backend/internals/features/attendance/dto"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/service"
	helper "absensi_backend/internals/helpers"
	helperAuth "absensi_backend/internals/helpers/auth"
)

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	s := strings.TrimSpace(c.Params(name))
	if s == "" {
		return uuid.Nil, model.NewValidationError(name, "missing id")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, model.NewValidationError(name, "invalid uuid")
	}
	return id, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// readAttachment: field "file" opsional. maxBytes+1 dibaca supaya oversize tetap terdeteksi.
func readAttachment(c *fiber.Ctx, maxBytes int64) (*service.Attachment, error) {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, model.NewValidationError("file", "cannot read file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, model.NewValidationError("file", "cannot read file")
	}
	return &service.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Data:        data,
	}, nil
}

/* =========================
   POST /attendance/excuses
   JSON atau multipart (field "file")
   ========================= */

func (ctl *AttendanceController) CreateExcuse(c *fiber.Ctx) error {
	var req d.CreateExcuseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := req.Validate(ctl.Validate); err != nil {
		return helper.JsonValidationError(c, helper.ValidationErrorsMap(err))
	}

	cmd := req.ToCommand(clientIP(c))
	if isMultipart(c) {
		att, err := readAttachment(c, ctl.Svc.AttachmentMaxBytes())
		if err != nil {
			return writeServiceError(c, err)
		}
		cmd.Attachment = att
	}

	ev, err := ctl.Svc.RecordExcuse(c.UserContext(), helperAuth.ActorFromCtx(c), cmd)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonCreated(c, "Justificación registrada", d.FromExcuseModel(ev))
}

/* =========================
   PATCH /attendance/excuses/:id (admin)
   ========================= */

func (ctl *AttendanceController) PatchExcuse(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return writeServiceError(c, err)
	}

	var req d.PatchExcuseRequest
	var att *service.Attachment
	if isMultipart(c) {
		// multipart: hanya ganti lampiran (+ field teks opsional)
		if v := strings.TrimSpace(c.FormValue("category")); v != "" {
			req.Category = d.PatchField[string]{Present: true, Value: &v}
		}
		if v, ok := formValue(c, "detail"); ok {
			req.Detail = d.PatchField[string]{Present: true, Value: &v}
		}
		if att, err = readAttachment(c, ctl.Svc.AttachmentMaxBytes()); err != nil {
			return writeServiceError(c, err)
		}
	} else if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "Payload tidak valid")
	}

	if req.Empty() && att == nil {
		return helper.JsonError(c, http.StatusBadRequest, "Tidak ada field yang diubah")
	}

	am := req.ToAmendment(clientIP(c))
	am.Attachment = att
	ev, err := ctl.Svc.AmendExcuse(c.UserContext(), helperAuth.ActorFromCtx(c), id, am)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Justificación actualizada", d.FromExcuseModel(ev))
}

// formValue: bedakan "tidak dikirim" dengan "dikirim kosong".
func formValue(c *fiber.Ctx, key string) (string, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return "", false
	}
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}
