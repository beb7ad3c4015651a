// Package s3 provides Amazon S3 implementations of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "tables/")
//	if err != nil { ... }
//	err = strtab.Save(ctx, store, "names.strtab", table)
//
// Store alone gives last-writer-wins semantics for the CURRENT pointer used
// by strtab.Publish. DDBCommitStore adds DynamoDB conditional writes so that
// concurrent publishers cannot overwrite each other's commits.
package s3
