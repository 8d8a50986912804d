package quiz

import (
	"context"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/kubetour/pkg/api"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobStore keeps the history as one JSON object in a gocloud.dev bucket,
// supporting S3, GCS, Azure Blob Storage, local files and memory.
// Updates are serialized within this process only
type BlobStore struct {
	mu     sync.Mutex
	bucket *blob.Bucket
	key    string
}

const blobSuffix = ".json"

var _ Store = (*BlobStore)(nil)

// NewBlobStore opens the bucket at bucketURL. The object is named after
// HistoryKey under prefix
func NewBlobStore(
	ctx context.Context, bucketURL, prefix string,
) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &BlobStore{
		bucket: bucket,
		key:    prefix + HistoryKey + blobSuffix,
	}, nil
}

func (s *BlobStore) Load(ctx context.Context) ([]api.QuizAttempt, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return decodeHistory(data)
}

func (s *BlobStore) Update(
	ctx context.Context, fn UpdateFunc,
) ([]api.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	next := fn(decodeForUpdate(data))
	enc, err := encodeHistory(next)
	if err != nil {
		return nil, err
	}
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, s.key, enc, opts); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *BlobStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.bucket.Delete(ctx, s.key)
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

// Key returns the object key holding the history
func (s *BlobStore) Key() string {
	return s.key
}

func (s *BlobStore) read(ctx context.Context) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, s.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
