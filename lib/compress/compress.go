// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the codec used for an archive entry. Tags are
// stored as one byte in the entry table; changing the values breaks
// format compatibility.
type Tag uint8

const (
	// None stores the payload unchanged.
	None Tag = 0

	// LZ4 is LZ4 block compression. Fast to decode, moderate ratio.
	LZ4 Tag = 1

	// Zstd is zstd at the default level. Better ratio for text-like
	// assets (HTML, CSS, JSON, shaders).
	Zstd Tag = 2
)

// MaxTag is the highest tag this package can decode.
const MaxTag = Zstd

// String returns the human-readable name of a tag.
func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseTag parses a tag from its string representation.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// MaxSize is the largest decompressed payload any codec will produce.
const MaxSize = 1 << 30

const (
	// An LZ4 block encodes at most 255 output bytes per input byte,
	// plus a short literal tail.
	lz4MaxRatio = 255
	lz4Slack    = 16

	// A zstd RLE block spends 4 bytes on up to 128 KiB of output.
	zstdMaxRatio = 128 << 10 / 4
)

// Bound returns the largest decompressed size tag can produce from
// length stored bytes. Compressed codecs are capped at [MaxSize];
// unknown tags produce nothing.
func Bound(tag Tag, length uint64) uint64 {
	var bound uint64
	switch tag {
	case None:
		return length
	case LZ4:
		bound = saturatingMulAdd(length, lz4MaxRatio, lz4Slack)
	case Zstd:
		bound = saturatingMulAdd(length, zstdMaxRatio, 0)
	default:
		return 0
	}
	return min(bound, MaxSize)
}

func saturatingMulAdd(value, factor, addend uint64) uint64 {
	if value > (math.MaxUint64-addend)/factor {
		return math.MaxUint64
	}
	return value*factor + addend
}

// ErrSizeOutOfRange is returned by [Decompress] when the expected
// size cannot come from the compressed input.
var ErrSizeOutOfRange = errors.New("declared size out of range")

// ErrIncompressible is returned by [Compress] when the codec output
// is not smaller than the input. Callers fall back to [None].
var ErrIncompressible = errors.New("data is incompressible")

// Compress compresses data with the given codec. For None it returns
// data unchanged (no copy).
func Compress(data []byte, tag Tag) ([]byte, error) {
	switch tag {
	case None:
		return data, nil
	case LZ4:
		return compressLZ4(data)
	case Zstd:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Decompress reverses [Compress]. The decompressed length must equal
// size exactly; a mismatch is an error.
func Decompress(compressed []byte, tag Tag, size int) ([]byte, error) {
	if tag <= MaxTag && (size < 0 || uint64(size) > Bound(tag, uint64(len(compressed)))) {
		return nil, fmt.Errorf("%s payload of %d bytes cannot decompress to %d bytes: %w",
			tag, len(compressed), size, ErrSizeOutOfRange)
	}
	switch tag {
	case None:
		if len(compressed) != size {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d",
				len(compressed), size)
		}
		return compressed, nil
	case LZ4:
		return decompressLZ4(compressed, size)
	case Zstd:
		return decompressZstd(compressed, size)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, ErrIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use through
// EncodeAll and DecodeAll, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(MaxSize),
		zstd.WithDecoderMaxWindow(MaxSize),
	)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	// The declared size is only trusted after decoding.
	result, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}
	return result, nil
}

// Select picks a codec for data by compressing it with zstd and
// looking at the ratio: at least 1.5x selects zstd, at least 1.1x
// selects LZ4, anything else is stored raw.
func Select(data []byte) Tag {
	if len(data) == 0 {
		return None
	}

	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))

	switch {
	case ratio >= 1.5:
		return Zstd
	case ratio >= 1.1:
		return LZ4
	default:
		return None
	}
}

// Auto compresses data with the codec chosen by [Select], falling
// back to None for incompressible input. It returns the stored bytes
// and the tag actually used.
func Auto(data []byte) ([]byte, Tag, error) {
	return WithFallback(data, Select(data))
}

// WithFallback compresses data with tag, storing it raw when the
// codec does not shrink it or data exceeds [MaxSize].
func WithFallback(data []byte, tag Tag) ([]byte, Tag, error) {
	if len(data) > MaxSize {
		return data, None, nil
	}
	compressed, err := Compress(data, tag)
	if err != nil {
		if errors.Is(err, ErrIncompressible) {
			return data, None, nil
		}
		return nil, 0, err
	}
	return compressed, tag, nil
}
