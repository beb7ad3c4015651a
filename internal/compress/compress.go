package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/strtab/internal/conv"
	"github.com/hupe1980/strtab/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression algorithm of an envelope.
type Codec uint8

const (
	// None stores the payload uncompressed (still checksummed).
	None Codec = 0
	// LZ4 is LZ4 block compression (fast).
	LZ4 Codec = 1
	// ZSTD is Zstandard compression (better ratio).
	ZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Codec(%d)", uint8(c))
	}
}

// Magic prefixes every envelope.
var Magic = [4]byte{'S', 'T', 'Z', '1'}

// HeaderSize is the size of the envelope header:
// [magic 4][codec 1][crc32c 4][raw length 8].
const HeaderSize = 17

var (
	// ErrCorrupt is returned for envelopes that fail validation.
	ErrCorrupt = errors.New("compress: corrupt envelope")
	// ErrChecksum is returned when the decoded bytes do not match the stored checksum.
	ErrChecksum = errors.New("compress: checksum mismatch")
	// ErrUnknownCodec is returned for codec bytes outside the known set.
	ErrUnknownCodec = errors.New("compress: unknown codec")
	// ErrTooLarge is returned when the declared raw size exceeds the caller's limit.
	ErrTooLarge = errors.New("compress: decoded size exceeds limit")
)

// Worst-case expansion of one payload byte. An LZ4 literal run extends by
// 255 bytes per length byte; a 4-byte zstd RLE block yields 128 KiB.
const (
	lz4MaxRatio  = 255
	zstdMaxRatio = 128 << 10 / 4
)

// checkExpansion rejects a declared raw length the payload cannot produce.
func checkExpansion(codec Codec, rawLen, payloadLen, ratio, slack int) error {
	limit, err := conv.MulInt(payloadLen, ratio)
	if err == nil && rawLen <= limit+slack {
		return nil
	}
	return fmt.Errorf("%w: %s payload of %d bytes cannot decode to %d bytes", ErrCorrupt, codec, payloadLen, rawLen)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// IsEnvelope reports whether data starts with the envelope magic.
func IsEnvelope(data []byte) bool {
	return len(data) >= len(Magic) && bytes.Equal(data[:len(Magic)], Magic[:])
}

// Encode wraps data in an envelope compressed with codec.
// If compression saves less than 10%, the payload is stored with None.
func Encode(data []byte, codec Codec) ([]byte, error) {
	var (
		payload []byte
		err     error
	)

	switch codec {
	case None:
	case LZ4:
		payload, err = compressLZ4(data)
	case ZSTD:
		payload, err = compressZSTD(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}
	if err != nil {
		return nil, err
	}

	if payload == nil || float64(len(payload)) > float64(len(data))*0.9 {
		codec, payload = None, data
	}

	out := make([]byte, HeaderSize+len(payload))
	copy(out, Magic[:])
	out[4] = byte(codec)
	binary.LittleEndian.PutUint32(out[5:], hash.CRC32C(data))
	binary.LittleEndian.PutUint64(out[9:], uint64(len(data)))
	copy(out[HeaderSize:], payload)
	return out, nil
}

// Decode unwraps an envelope and verifies its checksum. A positive maxSize
// bounds the declared raw length before any memory is allocated.
func Decode(data []byte, maxSize int) ([]byte, Codec, error) {
	if !IsEnvelope(data) || len(data) < HeaderSize {
		return nil, 0, fmt.Errorf("%w: missing header", ErrCorrupt)
	}

	codec := Codec(data[4])
	sum := binary.LittleEndian.Uint32(data[5:])
	rawLen, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(data[9:]))
	if err != nil {
		return nil, codec, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if maxSize > 0 && rawLen > maxSize {
		return nil, codec, fmt.Errorf("%w: %d > %d", ErrTooLarge, rawLen, maxSize)
	}
	payload := data[HeaderSize:]

	var raw []byte
	switch codec {
	case None:
		if len(payload) != rawLen {
			return nil, codec, fmt.Errorf("%w: payload %d bytes, declared %d", ErrCorrupt, len(payload), rawLen)
		}
		raw = payload
	case LZ4:
		if err := checkExpansion(codec, rawLen, len(payload), lz4MaxRatio, 16); err != nil {
			return nil, codec, err
		}
		raw = make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, codec, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if n != rawLen {
			return nil, codec, fmt.Errorf("%w: decompressed %d bytes, declared %d", ErrCorrupt, n, rawLen)
		}
	case ZSTD:
		if err := checkExpansion(codec, rawLen, len(payload), zstdMaxRatio, 0); err != nil {
			return nil, codec, err
		}
		var h zstd.Header
		if err := h.Decode(payload); err != nil {
			return nil, codec, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if h.HasFCS && h.FrameContentSize != uint64(rawLen) {
			return nil, codec, fmt.Errorf("%w: frame holds %d bytes, declared %d", ErrCorrupt, h.FrameContentSize, rawLen)
		}
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, codec, err
		}
		raw, err = dec.DecodeAll(payload, make([]byte, 0, rawLen))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, codec, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if len(raw) != rawLen {
			return nil, codec, fmt.Errorf("%w: decompressed %d bytes, declared %d", ErrCorrupt, len(raw), rawLen)
		}
	default:
		return nil, codec, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}

	if got := hash.CRC32C(raw); got != sum {
		return nil, codec, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, sum)
	}
	return raw, codec, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}
