// Package storage keeps attachment bytes in a local directory or an
// S3-compatible bucket.
package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ninjahub/ninjahub-core/config"
)

var ErrInvalidKey = errors.New("storage: invalid object key")

type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID(t time.Time) ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy)
}

// NewObjectKey returns attachments/<owner>/<yyyy>/<mm>/<ulid><ext>. Keys for
// one owner sort by upload time.
func NewObjectKey(ownerID int64, fileName string, now time.Time) string {
	now = now.UTC()
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("attachments/%d/%04d/%02d/%s%s", ownerID, now.Year(), now.Month(), newULID(now), ext)
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// New builds the backend selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "local", "":
		return NewLocal(cfg.UploadDir, strings.TrimRight(cfg.SiteURL, "/")+"/uploads")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
