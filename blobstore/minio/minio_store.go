package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/kclust/blobstore"
)

// errAborted is the pipe error that makes an aborted upload fail on the
// server side.
var errAborted = errors.New("minio: upload aborted")

// Store keeps datasets and reports in a MinIO (or other S3-compatible)
// bucket. Blob names are joined below a fixed key prefix.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore returns a Store on bucket. rootPrefix, e.g. "kclust/", is
// prepended to every blob name.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: rootPrefix}
}

func (s *Store) objectKey(name string) string {
	return path.Join(s.prefix, name)
}

func (s *Store) blobName(key string) string {
	name, _ := strings.CutPrefix(key, s.prefix)
	return strings.TrimPrefix(name, "/")
}

// translate maps missing objects to blobstore.ErrNotFound.
func translate(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("minio: %s: %w", key, blobstore.ErrNotFound)
	}
	return err
}

// Open stats name and returns a blob serving ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectKey(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate(key, err)
	}
	return &object{store: s, key: key, size: info.Size}, nil
}

// Put uploads data in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// Create starts a streaming upload of unknown size. The object appears on
// Close; Abort cancels it.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	u := &upload{pw: pw, cancel: cancel, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(name), pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		_ = pr.CloseWithError(err)
		u.done <- err
	}()
	return u, nil
}

// Delete removes name. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.objectKey(name)
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !errors.Is(translate(key, err), blobstore.ErrNotFound) {
		return err
	}
	return nil
}

// List returns the sorted names of all blobs starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.objectKey(prefix),
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := s.blobName(obj.Key); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

type object struct {
	store *Store
	key   string
	size  int64
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

// get issues a ranged GET for [off, off+length) clipped to the object size
// and returns the clipped length.
func (o *object) get(ctx context.Context, off, length int64) (*minio.Object, int64, error) {
	if off < 0 {
		return nil, 0, fmt.Errorf("minio: %s: negative offset %d", o.key, off)
	}
	if off >= o.size || length <= 0 {
		return nil, 0, io.EOF
	}
	length = min(length, o.size-off)

	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, off+length-1); err != nil {
		return nil, 0, err
	}
	obj, err := o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
	if err != nil {
		return nil, 0, translate(o.key, err)
	}
	return obj, length, nil
}

// ReadAt fills p from off. A read that reaches the end of the object
// returns io.EOF along with the bytes read.
func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	obj, n, err := o.get(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	read, err := io.ReadFull(obj, p[:n])
	if err != nil {
		return read, err
	}
	if read < len(p) {
		return read, io.EOF
	}
	return read, nil
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	obj, _, err := o.get(ctx, off, length)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

type upload struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
	result error
}

func (u *upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

func (u *upload) Sync() error { return nil }

// Close finishes the upload and waits for the server to acknowledge it.
func (u *upload) Close() error {
	u.finish(nil)
	return u.result
}

// Abort cancels the upload. Nothing is stored under the name.
func (u *upload) Abort() error {
	u.finish(errAborted)
	return nil
}

func (u *upload) finish(cause error) {
	u.once.Do(func() {
		if cause != nil {
			_ = u.pw.CloseWithError(cause)
			u.cancel()
			<-u.done
			return
		}
		_ = u.pw.Close()
		u.result = <-u.done
		u.cancel()
	})
}
