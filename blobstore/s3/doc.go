// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore
// for shot records.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("survey-7/records"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// # Features
//
//   - Range reads for header-only inspection
//   - Managed multipart uploads for large records
//   - CRC32C integrity checks on Put
//   - Automatic pagination for listing
package s3
