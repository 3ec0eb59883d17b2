// Body compression.
//
// The change log is JSON with heavy key repetition, so it compresses well.
// Zstd is the default. XZ trades write speed for a smaller file and is meant
// for archival copies. CompressNone stores the JSON as is, which is mostly
// useful when inspecting or hand-editing a document.
package quire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression constants.
const (
	CompressZstd = 1 // Default
	CompressNone = 2
	CompressXZ   = 3
)

// Shared encoder/decoder, both safe for concurrent use. Construction is
// expensive, so they are allocated once.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(DefaultMaxDocumentSize))
)

func knownCompression(mode int) bool {
	return mode >= CompressZstd && mode <= CompressXZ
}

func compress(data []byte, mode int) ([]byte, error) {
	switch mode {
	case CompressZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressNone:
		return data, nil
	case CompressXZ:
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, mode)
	}
}

// decompress expands data, refusing to produce more than limit bytes.
func decompress(data []byte, mode, limit int) ([]byte, error) {
	var out []byte
	switch mode {
	case CompressZstd:
		var err error
		out, err = zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrDecompress, err)
		}
	case CompressNone:
		out = data
	case CompressXZ:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: xz: %w", ErrDecompress, err)
		}
		out, err = io.ReadAll(io.LimitReader(r, int64(limit)+1))
		if err != nil {
			return nil, fmt.Errorf("%w: xz: %w", ErrDecompress, err)
		}
	default:
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, mode)
	}
	if len(out) > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(out))
	}
	return out, nil
}
