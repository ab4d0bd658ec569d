// Package minio stores shot records in MinIO or any other S3-compatible
// service through the MinIO client.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "surveys", "line-12/")
//
// Use this backend for air-gapped clusters without AWS credentials.
package minio
