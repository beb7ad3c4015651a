package strtab

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/hupe1980/strtab/blobstore"
	"github.com/hupe1980/strtab/internal/compress"
	"golang.org/x/sync/errgroup"
)

// Compression selects how Save encodes a table blob.
type Compression int

const (
	// CompressionRaw stores the plain serialized layout. Raw blobs from a
	// Mappable store load without copying.
	CompressionRaw Compression = iota
	// CompressionNone wraps the layout in a checksummed envelope without
	// compressing it.
	CompressionNone
	// CompressionLZ4 compresses with LZ4 (fast).
	CompressionLZ4
	// CompressionZSTD compresses with Zstandard (better ratio).
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionRaw:
		return "raw"
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

func (c Compression) codec() (compress.Codec, error) {
	switch c {
	case CompressionNone:
		return compress.None, nil
	case CompressionLZ4:
		return compress.LZ4, nil
	case CompressionZSTD:
		return compress.ZSTD, nil
	default:
		return 0, fmt.Errorf("strtab: unknown compression %d", int(c))
	}
}

// SaveOptions configures Save, SaveAll and Publish.
type SaveOptions struct {
	// Compression selects the blob encoding. Default: CompressionRaw.
	Compression Compression

	// Resources bounds concurrent uploads and upload throughput.
	Resources *ResourceController

	// Logger receives one record per blob write.
	Logger *Logger

	// MetricsCollector records every blob write.
	MetricsCollector MetricsCollector
}

// SaveOption configures persistence calls.
type SaveOption func(*SaveOptions)

// WithCompression selects the blob encoding.
func WithCompression(c Compression) SaveOption {
	return func(o *SaveOptions) {
		o.Compression = c
	}
}

func applySaveOptions(optFns []SaveOption) SaveOptions {
	o := SaveOptions{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	if o.MetricsCollector == nil {
		o.MetricsCollector = NoopMetricsCollector{}
	}
	return o
}

// encodeBlob serializes t in the configured encoding.
func encodeBlob(t *Table, c Compression) ([]byte, error) {
	data, err := t.MarshalBinary()
	if err != nil || c == CompressionRaw {
		return data, err
	}
	codec, err := c.codec()
	if err != nil {
		return nil, err
	}
	return compress.Encode(data, codec)
}

// upload writes data through put while holding an upload slot and
// respecting the IO limit.
func upload(ctx context.Context, rc *ResourceController, name string, data []byte, put func(context.Context, string, []byte) error) error {
	if err := rc.AcquireUpload(ctx); err != nil {
		return err
	}
	defer rc.ReleaseUpload()

	if err := rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return put(ctx, name, data)
}

// Save writes t to store under name.
//
// Example:
//
//	err := strtab.Save(ctx, store, "names.strtab", t, strtab.WithCompression(strtab.CompressionZSTD))
func Save(ctx context.Context, store blobstore.BlobStore, name string, t *Table, optFns ...SaveOption) error {
	return saveBlob(ctx, store.Put, name, t, applySaveOptions(optFns))
}

func saveBlob(ctx context.Context, put func(context.Context, string, []byte) error, name string, t *Table, o SaveOptions) error {
	start := time.Now()

	data, err := encodeBlob(t, o.Compression)
	if err == nil {
		err = upload(ctx, o.Resources, name, data, put)
	}

	o.Logger.LogPersist(ctx, name, len(data), err)
	o.MetricsCollector.RecordPersist(len(data), time.Since(start), err)
	return err
}

// SaveAll writes every table of tables concurrently. With a resource
// controller, concurrency is bounded by its upload slots; otherwise by
// GOMAXPROCS. The first failure cancels the remaining uploads.
func SaveAll(ctx context.Context, store blobstore.BlobStore, tables map[string]*Table, optFns ...SaveOption) error {
	o := applySaveOptions(optFns)

	g, gctx := errgroup.WithContext(ctx)
	if o.Resources == nil {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}
	for name, t := range tables {
		g.Go(func() error {
			return saveBlob(gctx, store.Put, name, t, o)
		})
	}
	return g.Wait()
}

// LoadBlob loads a table saved by Save.
//
// Raw blobs from a Mappable store (LocalStore, MemoryStore, CachingStore)
// are viewed in place and the blob stays open until Table.Close. Enveloped
// blobs are verified and decompressed into a private buffer; with a memory
// limit configured, the declared decompressed size is checked against it
// first.
//
// Only the logging, metrics and resource options apply.
func LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Table, error) {
	o := applyOptions(optFns)

	b, err := store.Open(ctx, name)
	if err != nil {
		o.logger.LogLoad(name, 0, err)
		return nil, err
	}

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		o.logger.LogLoad(name, 0, err)
		return nil, errors.Join(err, b.Close())
	}

	if compress.IsEnvelope(data) {
		raw, codec, err := compress.Decode(data, int(o.resources.MemoryLimit()))
		switch {
		case errors.Is(err, compress.ErrTooLarge):
			err = fmt.Errorf("%w: %w", ErrAllocationFailure, err)
		case err != nil:
			err = layoutError(-1, err, "envelope")
		}
		if err != nil {
			o.logger.LogLoad(name, 0, err)
			return nil, errors.Join(err, b.Close())
		}
		if codec != compress.None {
			// raw is a private buffer.
			if err := b.Close(); err != nil {
				return nil, err
			}
			return load(raw, name, o)
		}
		// An uncompressed payload aliases the blob.
		data = raw
	}

	t, err := load(data, name, o)
	if err != nil {
		return nil, errors.Join(err, b.Close())
	}
	if _, mapped := b.(blobstore.Mappable); mapped {
		t.closer = b
		return t, nil
	}
	if err := b.Close(); err != nil {
		return nil, err
	}
	return t, nil
}
