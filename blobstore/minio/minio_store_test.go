package minio

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kclust/blobstore/blobstoretest"
)

// newTestStore connects to MINIO_ENDPOINT (default localhost:9000) and scopes
// the store to a fresh prefix. The test is skipped when MinIO is unreachable.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	endpoint := cmp.Or(os.Getenv("MINIO_ENDPOINT"), "localhost:9000")
	user := cmp.Or(os.Getenv("MINIO_ROOT_USER"), "minioadmin")
	password := cmp.Or(os.Getenv("MINIO_ROOT_PASSWORD"), "minioadmin")
	bucket := "kclust-test"

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(user, password, ""),
	})
	if err != nil {
		t.Skipf("minio client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("minio not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, fmt.Sprintf("run-%d/", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		names, err := store.List(ctx, "")
		if err != nil {
			return
		}
		for _, name := range names {
			_ = store.Delete(ctx, name)
		}
	})
	return store
}

func TestStore(t *testing.T) {
	blobstoretest.Run(t, newTestStore(t))
}
