// Package minio stores datasets and reports in a MinIO bucket, or any other
// S3-compatible server reachable with minio-go.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "kclust", "mnist/")
//	ds, err := dataset.Load(ctx, store, "train-images.idx.gz", "train-labels.idx.gz")
package minio
