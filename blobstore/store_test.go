package blobstore_test

import (
	"testing"

	"github.com/hupe1980/kclust/blobstore"
	"github.com/hupe1980/kclust/blobstore/blobstoretest"
)

func TestStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		blobstoretest.Run(t, blobstore.NewMemoryStore())
	})
	t.Run("local", func(t *testing.T) {
		blobstoretest.Run(t, blobstore.NewLocalStore(t.TempDir()))
	})
}
