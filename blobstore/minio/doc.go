// Package minio provides a BlobStore backed by the MinIO client.
//
// It works with MinIO and other S3-compatible services (Ceph, Garage,
// SeaweedFS) without the AWS SDK.
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
//	store := minioblob.NewStore(client, "my-bucket", "tables/")
//	err = strtab.Save(ctx, store, "names.strtab", table)
package minio
