package helper

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

const SpamPrefix = "spam"

// MoveToSpam: objek aktif → spam/YYYY/MM/DD/HHMMSS__basename.
// Dihapus permanen oleh reaper setelah masa retensi. Return URL tujuan.
func (s *OSSService) MoveToSpam(ctx context.Context, publicURL string) (string, error) {
	srcKey, err := s.KeyFromPublicURL(publicURL)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(srcKey, SpamPrefix+"/") {
		return publicURL, nil
	}

	now := s.now()
	dstKey := path.Join(
		SpamPrefix,
		now.Format("2006"), now.Format("01"), now.Format("02"),
		fmt.Sprintf("%s__%s", now.Format("150405"), path.Base(srcKey)),
	)

	if _, err := s.Bucket.CopyObject(srcKey, dstKey, oss.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("copy %q -> %q: %w", srcKey, dstKey, err)
	}
	_ = s.Bucket.DeleteObject(srcKey, oss.WithContext(ctx)) // best-effort

	return s.PublicURL(dstKey), nil
}
