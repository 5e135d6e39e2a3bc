// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without requiring the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.New(minioblob.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "datasets",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := dataset.FromBlob(ctx, store, "points.txt")
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
