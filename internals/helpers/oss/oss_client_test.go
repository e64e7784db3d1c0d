package helper

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/chai2010/webp"
)

type fakeObject struct {
	data     []byte
	modified time.Time
}

type fakeBucket struct {
	objects map[string]fakeObject
	now     time.Time
}

func newFakeBucket(now time.Time) *fakeBucket {
	return &fakeBucket{objects: map[string]fakeObject{}, now: now}
}

func (b *fakeBucket) PutObject(key string, r io.Reader, _ ...oss.Option) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.objects[key] = fakeObject{data: data, modified: b.now}
	return nil
}

func (b *fakeBucket) CopyObject(src, dst string, _ ...oss.Option) (oss.CopyObjectResult, error) {
	obj, ok := b.objects[src]
	if !ok {
		return oss.CopyObjectResult{}, oss.ServiceError{StatusCode: 404, Code: "NoSuchKey"}
	}
	obj.modified = b.now
	b.objects[dst] = obj
	return oss.CopyObjectResult{}, nil
}

func (b *fakeBucket) DeleteObject(key string, _ ...oss.Option) error {
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) ListObjects(_ ...oss.Option) (oss.ListObjectsResult, error) {
	var res oss.ListObjectsResult
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if strings.HasPrefix(k, SpamPrefix+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		res.Objects = append(res.Objects, oss.ObjectProperties{Key: k, LastModified: b.objects[k].modified})
	}
	return res, nil
}

func (b *fakeBucket) DeleteObjects(keys []string, _ ...oss.Option) (oss.DeleteObjectsResult, error) {
	for _, k := range keys {
		delete(b.objects, k)
	}
	return oss.DeleteObjectsResult{DeletedObjects: keys}, nil
}

func newTestService(b *fakeBucket) *OSSService {
	s := NewOSSService(b, "https://oss-ap-southeast-1.aliyuncs.com", "absensi", "justificaciones")
	s.PublicBase = ""
	s.now = func() time.Time { return b.now }
	return s
}

func TestObjectKeyAndPublicURL(t *testing.T) {
	b := newFakeBucket(time.Date(2025, 1, 7, 9, 30, 0, 0, time.UTC))
	s := newTestService(b)

	key := s.ObjectKey("Certificado Médico.PDF", "2025/01", "abc")
	if !strings.HasPrefix(key, "justificaciones/2025/01/abc/certificado-mdico_20250107_093000_") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("unexpected key %q", key)
	}

	url := s.PublicURL(key)
	if url != "https://absensi.oss-ap-southeast-1.aliyuncs.com/"+key {
		t.Fatalf("unexpected url %q", url)
	}
	back, err := s.KeyFromPublicURL(url)
	if err != nil || back != key {
		t.Fatalf("KeyFromPublicURL = %q, %v", back, err)
	}
}

func TestMoveToSpamAndReap(t *testing.T) {
	start := time.Date(2025, 1, 7, 9, 30, 0, 0, time.UTC)
	b := newFakeBucket(start)
	s := newTestService(b)
	ctx := context.Background()

	url, err := s.Put(ctx, "justificaciones/a.pdf", []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	spamURL, err := s.MoveToSpam(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.objects["justificaciones/a.pdf"]; ok {
		t.Fatal("source object should be removed")
	}
	if !strings.Contains(spamURL, "/spam/2025/01/07/093000__a.pdf") {
		t.Fatalf("unexpected spam url %q", spamURL)
	}
	// sudah di spam → tidak dipindah lagi
	if again, err := s.MoveToSpam(ctx, spamURL); err != nil || again != spamURL {
		t.Fatalf("second move = %q, %v", again, err)
	}

	// belum lewat retensi
	if n, err := s.ReapSpam(ctx, 30*24*time.Hour, false); err != nil || n != 0 {
		t.Fatalf("reap before retention = %d, %v", n, err)
	}

	b.now = start.Add(31 * 24 * time.Hour)
	if n, err := s.ReapSpam(ctx, 30*24*time.Hour, true); err != nil || n != 1 {
		t.Fatalf("dry run = %d, %v", n, err)
	}
	if len(b.objects) != 1 {
		t.Fatal("dry run must not delete")
	}
	if n, err := s.ReapSpam(ctx, 30*24*time.Hour, false); err != nil || n != 1 {
		t.Fatalf("reap = %d, %v", n, err)
	}
	if len(b.objects) != 0 {
		t.Fatalf("objects left: %v", len(b.objects))
	}
}

func TestConvertToWebP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	out, err := ConvertToWebP(buf.Bytes(), "foto.png", WebPOptions{MaxW: 100, MaxH: 100, Quality: 70})
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := webp.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}

	if _, err := ConvertToWebP([]byte("%PDF-1.4 not an image"), "doc.pdf", WebPOptions{}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
