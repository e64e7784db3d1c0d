package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/service"
	"absensi_backend/internals/features/attendance/store"
	helper "absensi_backend/internals/helpers"
	helperAuth "absensi_backend/internals/helpers/auth"
)

var (
	pet     = time.FixedZone("PET", -5*3600)
	fixedAt = time.Date(2025, 3, 4, 8, 15, 0, 0, pet)
)

const headerTestRole = "X-Test-Role"

type fakeStorage struct {
	stored    []string
	discarded []string
}

func (f *fakeStorage) Store(_ context.Context, personID uuid.UUID, day time.Time, a service.Attachment) (string, error) {
	ref := "https://files.example.test/" + personID.String() + "/" + day.Format("2006-01-02") + "/" + a.Filename
	f.stored = append(f.stored, ref)
	return ref, nil
}

func (f *fakeStorage) Discard(_ context.Context, ref string) error {
	f.discarded = append(f.discarded, ref)
	return nil
}

type harness struct {
	app     *fiber.App
	st      *store.MemStore
	svc     *service.Service
	storage *fakeStorage
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithConfig(t, fiber.Config{})
}

// behindProxy: konfigurasi seperti main.go dengan proxy tepercaya. app.Test
// memakai alamat koneksi 0.0.0.0.
func behindProxy(trusted ...string) fiber.Config {
	return fiber.Config{
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          trusted,
		EnableIPValidation:      true,
	}
}

func newHarnessWithConfig(t *testing.T, cfg fiber.Config) *harness {
	t.Helper()
	st := store.NewMemStore(time.Second)
	if _, err := st.UpsertPersons(context.Background(), []model.PersonModel{{
		PersonNationalID: "12345678",
		PersonLastNames:  "Quispe Mamani",
		PersonFirstNames: "Rosa",
		PersonCategory:   model.PersonCategoryAppointed,
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	storage := &fakeStorage{}
	svc := service.New(st, helperAuth.DefaultRoleAuthorizer(),
		service.WithLocation(pet),
		service.WithClock(func() time.Time { return fixedAt }),
		service.WithStorage(storage),
	)
	t.Cleanup(svc.FlushAudit)

	cfg.ErrorHandler = helper.FromFiberError
	app := fiber.New(cfg)
	// role diambil dari header supaya satu app bisa dipakai semua kasus
	app.Use(func(c *fiber.Ctx) error {
		role := c.Get(headerTestRole, constants.RoleAdmin)
		c.Locals(helperAuth.LocUserID, "u-"+role)
		c.Locals(helperAuth.LocUserName, role+"-tester")
		c.Locals(helperAuth.LocUserRole, role)
		return c.Next()
	})

	ctl := NewAttendanceController(svc, nil)
	app.Post("/scan", ctl.Scan)
	app.Post("/manual", ctl.Manual)
	app.Get("/persons/lookup", ctl.Lookup)
	app.Get("/status", ctl.Status)
	app.Post("/excuses", ctl.CreateExcuse)
	app.Patch("/excuses/:id", ctl.PatchExcuse)
	app.Get("/history", ctl.History)
	app.Get("/report", ctl.Report)
	app.Get("/report/excel", ctl.ReportExcel)

	return &harness{app: app, st: st, svc: svc, storage: storage}
}

type envelope struct {
	Success     bool                `json:"success"`
	Warning     bool                `json:"warning"`
	WarningCode string              `json:"warning_code"`
	Message     string              `json:"message"`
	Data        json.RawMessage     `json:"data"`
	Errors      map[string][]string `json:"errors"`
	Pagination  *helper.Pagination  `json:"pagination"`
}

func (h *harness) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, env
}

func jsonReq(method, path, role string, body any) *http.Request {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if role != "" {
		req.Header.Set(headerTestRole, role)
	}
	return req
}

func TestScanRecordsOnceThenWarns(t *testing.T) {
	h := newHarness(t)

	resp, env := h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "DNI:12345678|X"}))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first scan: status=%d body=%+v", resp.StatusCode, env)
	}
	var first struct {
		PresenceID uuid.UUID `json:"presence_id"`
		Day        string    `json:"day"`
		Time       string    `json:"time"`
		Outcome    string    `json:"outcome"`
	}
	if err := json.Unmarshal(env.Data, &first); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if first.Day != "2025-03-04" || first.Time != "08:15" || first.Outcome != string(service.OutcomeCreated) {
		t.Fatalf("unexpected presence: %+v", first)
	}

	resp, env = h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "12345678"}))
	if resp.StatusCode != fiber.StatusOK || !env.Warning || env.WarningCode != "ALREADY_RECORDED" {
		t.Fatalf("second scan: status=%d body=%+v", resp.StatusCode, env)
	}
	var second struct {
		PresenceID uuid.UUID `json:"presence_id"`
	}
	_ = json.Unmarshal(env.Data, &second)
	if second.PresenceID != first.PresenceID {
		t.Fatalf("duplicate scan should echo the existing event")
	}

	if p, _ := h.st.Counts(); p != 1 {
		t.Fatalf("presences=%d want 1", p)
	}
}

func TestScanValidationAndNotFound(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"empty code", fiber.Map{"code": "   "}, fiber.StatusUnprocessableEntity},
		{"no national id", fiber.Map{"code": "ABC-1234"}, fiber.StatusUnprocessableEntity},
		{"unknown person", fiber.Map{"code": "87654321"}, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, tc.body))
			if resp.StatusCode != tc.want {
				t.Fatalf("status=%d want %d body=%+v", resp.StatusCode, tc.want, env)
			}
		})
	}
}

func TestScanForbiddenForSupervisor(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleSupervisor, fiber.Map{"code": "12345678"}))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status=%d want 403", resp.StatusCode)
	}
}

func auditIPs(h *harness) []string {
	h.svc.FlushAudit()
	var out []string
	for _, a := range h.st.Audits() {
		if a.AuditIP != nil {
			out = append(out, *a.AuditIP)
		}
	}
	return out
}

func TestManualUsesForwardedIPFromTrustedProxy(t *testing.T) {
	h := newHarnessWithConfig(t, behindProxy("0.0.0.0"))

	req := jsonReq(http.MethodPost, "/manual", constants.RoleRegistrar, fiber.Map{"national_id": "12345678"})
	req.Header.Set(fiber.HeaderXForwardedFor, "203.0.113.7, 10.0.0.1")
	resp, env := h.do(t, req)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status=%d body=%+v", resp.StatusCode, env)
	}

	ips := auditIPs(h)
	if len(ips) == 0 || ips[0] != "203.0.113.7" {
		t.Fatalf("audit ips=%v want first forwarded hop", ips)
	}
}

func TestForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	for name, cfg := range map[string]fiber.Config{
		"no proxy header":   {},
		"other proxy range": behindProxy("10.0.0.0/8"),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarnessWithConfig(t, cfg)
			req := jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "12345678"})
			req.Header.Set(fiber.HeaderXForwardedFor, "198.51.100.66")
			if resp, env := h.do(t, req); resp.StatusCode != fiber.StatusCreated {
				t.Fatalf("status=%d body=%+v", resp.StatusCode, env)
			}
			for _, ip := range auditIPs(h) {
				if ip == "198.51.100.66" {
					t.Fatalf("spoofed X-Forwarded-For was stored")
				}
			}
			ev, err := h.st.QueryPresence(context.Background(), h.personID(t), time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
			if err != nil || ev == nil {
				t.Fatalf("presence: %v", err)
			}
			if ev.PresenceIP != nil && *ev.PresenceIP == "198.51.100.66" {
				t.Fatalf("spoofed X-Forwarded-For stored as presence ip")
			}
		})
	}
}

func (h *harness) personID(t *testing.T) uuid.UUID {
	t.Helper()
	p, err := h.st.FindPersonByNationalID(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	return p.PersonID
}

func TestLookupAndStatus(t *testing.T) {
	h := newHarness(t)

	resp, env := h.do(t, jsonReq(http.MethodGet, "/persons/lookup?code=12345678", constants.RoleRegistrar, nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("lookup status=%d", resp.StatusCode)
	}
	var person struct {
		DisplayName string `json:"display_name"`
	}
	_ = json.Unmarshal(env.Data, &person)
	if !strings.Contains(person.DisplayName, "Rosa") {
		t.Fatalf("display name=%q", person.DisplayName)
	}

	status := func() string {
		t.Helper()
		resp, env := h.do(t, jsonReq(http.MethodGet, "/status?code=12345678&day=2025-03-04", constants.RoleRegistrar, nil))
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status endpoint=%d body=%+v", resp.StatusCode, env)
		}
		var out struct {
			Status struct {
				Kind string `json:"status"`
			} `json:"status"`
		}
		_ = json.Unmarshal(env.Data, &out)
		return out.Status.Kind
	}

	if got := status(); got != "ABSENT" {
		t.Fatalf("before scan: %s", got)
	}
	h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "12345678"}))
	if got := status(); got != "PRESENT" {
		t.Fatalf("after scan: %s", got)
	}

	resp, _ = h.do(t, jsonReq(http.MethodGet, "/status?code=12345678&day=04-03-2025", constants.RoleRegistrar, nil))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("bad day: status=%d want 422", resp.StatusCode)
	}
}

func TestExcuseConflicts(t *testing.T) {
	h := newHarness(t)

	// 03-03 tanpa presensi → excuse boleh, kedua kali duplikat
	body := fiber.Map{"national_id": "12345678", "day": "2025-03-03", "category": "permit", "detail": "Trámite personal"}
	resp, env := h.do(t, jsonReq(http.MethodPost, "/excuses", constants.RoleSupervisor, body))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("excuse: status=%d body=%+v", resp.StatusCode, env)
	}
	resp, env = h.do(t, jsonReq(http.MethodPost, "/excuses", constants.RoleSupervisor, body))
	if resp.StatusCode != fiber.StatusConflict || env.WarningCode != "ALREADY_RECORDED" {
		t.Fatalf("duplicate excuse: status=%d body=%+v", resp.StatusCode, env)
	}

	// hari ini sudah hadir → excuse ditolak
	h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "12345678"}))
	body["day"] = "2025-03-04"
	resp, env = h.do(t, jsonReq(http.MethodPost, "/excuses", constants.RoleSupervisor, body))
	if resp.StatusCode != fiber.StatusConflict || env.WarningCode != "PRESENCE_CONFLICT" {
		t.Fatalf("excuse after presence: status=%d body=%+v", resp.StatusCode, env)
	}

	// registrar tidak boleh membuat excuse
	body["day"] = "2025-03-05"
	resp, _ = h.do(t, jsonReq(http.MethodPost, "/excuses", constants.RoleRegistrar, body))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("registrar excuse: status=%d want 403", resp.StatusCode)
	}

	// field wajib
	resp, env = h.do(t, jsonReq(http.MethodPost, "/excuses", constants.RoleSupervisor, fiber.Map{"national_id": "12345678"}))
	if resp.StatusCode != fiber.StatusUnprocessableEntity || len(env.Errors["day"]) == 0 {
		t.Fatalf("missing day: status=%d body=%+v", resp.StatusCode, env)
	}
}

func multipartReq(t *testing.T, method, path, role string, fields map[string]string, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if filename != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(data)
	}
	_ = w.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(headerTestRole, role)
	return req
}

func TestExcuseMultipartAndAmend(t *testing.T) {
	h := newHarness(t)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	req := multipartReq(t, http.MethodPost, "/excuses", constants.RoleSupervisor, map[string]string{
		"national_id": "12345678", "day": "2025-03-03", "category": "MEDICAL_LEAVE",
	}, "certificado.pdf", "application/pdf", pdf)
	resp, env := h.do(t, req)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("multipart excuse: status=%d body=%+v", resp.StatusCode, env)
	}
	var ex struct {
		ExcuseID      uuid.UUID `json:"excuse_id"`
		AttachmentRef *string   `json:"attachment_ref"`
		CategoryLabel string    `json:"category_label"`
	}
	_ = json.Unmarshal(env.Data, &ex)
	if ex.AttachmentRef == nil || len(h.storage.stored) != 1 {
		t.Fatalf("attachment not stored: %+v", ex)
	}

	// supervisor tidak boleh amend
	resp, _ = h.do(t, jsonReq(http.MethodPatch, "/excuses/"+ex.ExcuseID.String(), constants.RoleSupervisor, fiber.Map{"detail": "x"}))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("supervisor amend: status=%d want 403", resp.StatusCode)
	}

	// body kosong
	resp, _ = h.do(t, jsonReq(http.MethodPatch, "/excuses/"+ex.ExcuseID.String(), constants.RoleAdmin, fiber.Map{}))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("empty amend: status=%d want 400", resp.StatusCode)
	}

	// ganti lampiran → lampiran lama dibuang
	req = multipartReq(t, http.MethodPatch, "/excuses/"+ex.ExcuseID.String(), constants.RoleAdmin,
		map[string]string{"detail": "Descanso médico actualizado"}, "certificado-2.pdf", "application/pdf", pdf)
	resp, env = h.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("amend: status=%d body=%+v", resp.StatusCode, env)
	}
	var amended struct {
		Detail        string  `json:"detail"`
		AttachmentRef *string `json:"attachment_ref"`
		UpdatedBy     string  `json:"updated_by"`
	}
	_ = json.Unmarshal(env.Data, &amended)
	if amended.Detail != "Descanso médico actualizado" || amended.AttachmentRef == nil || *amended.AttachmentRef == *ex.AttachmentRef {
		t.Fatalf("unexpected amend result: %+v", amended)
	}
	if len(h.storage.discarded) != 1 || h.storage.discarded[0] != *ex.AttachmentRef {
		t.Fatalf("old attachment should be discarded, got %v", h.storage.discarded)
	}

	resp, _ = h.do(t, jsonReq(http.MethodPatch, "/excuses/"+uuid.NewString(), constants.RoleAdmin, fiber.Map{"detail": "x"}))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown excuse: status=%d want 404", resp.StatusCode)
	}
	resp, _ = h.do(t, jsonReq(http.MethodPatch, "/excuses/not-a-uuid", constants.RoleAdmin, fiber.Map{"detail": "x"}))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("bad id: status=%d want 422", resp.StatusCode)
	}
}

func TestHistoryPaging(t *testing.T) {
	h := newHarness(t)
	h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "12345678"}))
	h.do(t, jsonReq(http.MethodPost, "/excuses", constants.RoleSupervisor, fiber.Map{
		"national_id": "12345678", "day": "2025-03-03", "category": "COMMISSION",
	}))

	resp, env := h.do(t, jsonReq(http.MethodGet, "/history?per_page=1", constants.RoleSupervisor, nil))
	if resp.StatusCode != fiber.StatusOK || env.Pagination == nil {
		t.Fatalf("history: status=%d body=%+v", resp.StatusCode, env)
	}
	var items []struct {
		Kind string `json:"kind"`
		Day  string `json:"day"`
	}
	_ = json.Unmarshal(env.Data, &items)
	if len(items) != 1 || !env.Pagination.HasNext || env.Pagination.Count != 1 {
		t.Fatalf("page 1: items=%+v pagination=%+v", items, env.Pagination)
	}

	_, env = h.do(t, jsonReq(http.MethodGet, "/history?page=2&per_page=1", constants.RoleSupervisor, nil))
	_ = json.Unmarshal(env.Data, &items)
	if len(items) != 1 || env.Pagination.HasNext || !env.Pagination.HasPrev {
		t.Fatalf("page 2: items=%+v pagination=%+v", items, env.Pagination)
	}

	resp, _ = h.do(t, jsonReq(http.MethodGet, "/history?category=OTHER", constants.RoleSupervisor, nil))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("bad category: status=%d want 422", resp.StatusCode)
	}

	resp, _ = h.do(t, jsonReq(http.MethodGet, "/history", constants.RoleRegistrar, nil))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("registrar history: status=%d want 403", resp.StatusCode)
	}
}

func TestReportExcelDownload(t *testing.T) {
	h := newHarness(t)
	h.do(t, jsonReq(http.MethodPost, "/scan", constants.RoleRegistrar, fiber.Map{"code": "12345678"}))

	resp, err := h.app.Test(jsonReq(http.MethodGet, "/report/excel?from=2025-03-03&to=2025-03-04", constants.RoleSupervisor, nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != mimeXLSX {
		t.Fatalf("content-type=%q", ct)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !strings.Contains(cd, ".xlsx") {
		t.Fatalf("content-disposition=%q", cd)
	}

	raw, _ := io.ReadAll(resp.Body)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) == 0 {
		t.Fatalf("workbook has no sheets")
	}
}

func TestReportJSONSingleDay(t *testing.T) {
	h := newHarness(t)
	resp, env := h.do(t, jsonReq(http.MethodGet, "/report?from=2025-03-04", constants.RoleAdmin, nil))
	if resp.StatusCode != fiber.StatusOK || len(env.Data) == 0 {
		t.Fatalf("status=%d body=%+v", resp.StatusCode, env)
	}
}

func TestWriteServiceErrorMapping(t *testing.T) {
	app := fiber.New()
	var target error
	app.Get("/", func(c *fiber.Ctx) error { return writeServiceError(c, target) })

	cases := []struct {
		err  error
		want int
	}{
		{model.NewValidationError("code", "bad"), fiber.StatusUnprocessableEntity},
		{model.ErrDuplicate, fiber.StatusConflict},
		{model.ErrPresenceConflict, fiber.StatusConflict},
		{model.ErrNotFound, fiber.StatusNotFound},
		{model.ErrForbidden, fiber.StatusForbidden},
		{model.ErrConcurrencyTimeout, fiber.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		target = tc.err
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("%v → %d want %d", tc.err, resp.StatusCode, tc.want)
		}
		if tc.want == fiber.StatusServiceUnavailable && resp.Header.Get(fiber.HeaderRetryAfter) != "1" {
			t.Fatalf("missing Retry-After")
		}
	}
}

func TestCronWeeklyReportToken(t *testing.T) {
	h := newHarness(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	cron := NewCronController(h.svc, string(hash))
	h.app.Post("/cron/weekly-report", cron.WeeklyReport)

	resp, _ := h.do(t, httptest.NewRequest(http.MethodPost, "/cron/weekly-report?dry_run=true", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("no token: status=%d want 401", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodPost, "/cron/weekly-report?dry_run=true", nil)
	req.Header.Set(HeaderCronToken, "wrong")
	if resp, _ = h.do(t, req); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("wrong token: status=%d want 401", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/cron/weekly-report?limit=-1", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer s3cret")
	if resp, _ = h.do(t, req); resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("bad limit: status=%d want 422", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/cron/weekly-report?dry_run=true", nil)
	req.Header.Set(HeaderCronToken, "s3cret")
	resp, env := h.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("cron: status=%d body=%+v", resp.StatusCode, env)
	}
	var res struct {
		DryRun bool `json:"dry_run"`
	}
	_ = json.Unmarshal(env.Data, &res)
	if !res.DryRun {
		t.Fatalf("expected dry run result")
	}
}
