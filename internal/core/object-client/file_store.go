package objectclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Shivamm1101/doc-ai/internal/core"
)

var _ core.FileStore = (*FileStore)(nil)

// FileStore reads documents from local disk or, for s3:// and S3 https URLs,
// from object storage. objects may be nil when S3 is not configured.
type FileStore struct {
	objects core.ObjectClient
}

func NewFileStore(objects core.ObjectClient) *FileStore {
	return &FileStore{objects: objects}
}

func (s *FileStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	bucket, key, ok := parseObjectURL(path)
	if !ok {
		return os.ReadFile(path)
	}
	if s.objects == nil {
		return nil, fmt.Errorf("read %s: object storage is not configured", path)
	}
	return s.objects.GetFile(ctx, bucket, key)
}

// parseObjectURL splits s3://bucket/key and https://bucket.s3.<region>.amazonaws.com/key.
func parseObjectURL(u string) (bucket, key string, ok bool) {
	switch {
	case strings.HasPrefix(u, "s3://"):
		bucket, key, _ = strings.Cut(strings.TrimPrefix(u, "s3://"), "/")
	case strings.HasPrefix(u, "https://"):
		host, path, _ := strings.Cut(strings.TrimPrefix(u, "https://"), "/")
		name, rest, found := strings.Cut(host, ".s3.")
		if !found || !strings.HasSuffix(rest, "amazonaws.com") {
			return "", "", false
		}
		bucket, key = name, path
	default:
		return "", "", false
	}
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
