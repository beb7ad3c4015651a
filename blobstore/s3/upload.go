package s3

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/strtab/internal/hash"
)

// UploadConfig configures the S3 uploader.
type UploadConfig struct {
	// PartSize is the multipart threshold and part size.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of concurrent part uploads.
	// Default: 5
	Concurrency int

	// EnableChecksum sends CRC32C checksums with every upload.
	// Default: true
	EnableChecksum bool

	// LeavePartsOnError keeps the parts of a failed multipart upload.
	// Default: false
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:          8 * 1024 * 1024,
		Concurrency:       5,
		EnableChecksum:    true,
		LeavePartsOnError: false,
	}
}

// WithPartSize sets the multipart threshold and part size.
func WithPartSize(n int64) func(*UploadConfig) {
	return func(c *UploadConfig) {
		if n >= manager.MinUploadPartSize {
			c.PartSize = n
		}
	}
}

// WithoutChecksum disables CRC32C upload checksums, for S3-compatible
// services that reject them.
func WithoutChecksum() func(*UploadConfig) {
	return func(c *UploadConfig) {
		c.EnableChecksum = false
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

// computeCRC32C returns the checksum in S3's format: base64 of the
// big-endian bytes.
func computeCRC32C(data []byte) string {
	sum := hash.CRC32C(data)
	b := []byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)}
	return base64.StdEncoding.EncodeToString(b)
}

func putWithChecksum(ctx context.Context, client Client, bucket, key string, data []byte, checksum, ifNoneMatch bool) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if checksum {
		input.ChecksumCRC32C = aws.String(computeCRC32C(data))
	}
	if ifNoneMatch {
		input.IfNoneMatch = aws.String("*")
	}

	_, err := client.PutObject(ctx, input)
	return err
}
