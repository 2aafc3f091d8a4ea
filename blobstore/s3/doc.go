// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "kclust/")
//
// Reads use ranged GETs. Create streams through the multipart uploader; Put
// sends one PutObject with a CRC32C checksum.
package s3
