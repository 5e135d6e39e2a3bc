// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	src := dataset.FromBlob(ctx, store, "points.txt.zst")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart streaming uploads for large reports
//   - CRC32C integrity checksums on Put
//   - Automatic pagination for listing
package s3
