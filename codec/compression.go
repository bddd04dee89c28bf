package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the framing applied to an encoded stream.
type Compression uint8

const (
	// CompressionNone writes the flat format as is.
	CompressionNone Compression = iota
	// CompressionZstd wraps the stream in a zstd frame (better ratio).
	CompressionZstd
	// CompressionLZ4 wraps the stream in an lz4 frame (faster).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", c)
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// compressWriter wraps w according to c. The returned closer flushes the
// frame without closing w.
func compressWriter(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, nil, err
		}
		return enc, enc.Close, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		return zw, zw.Close, nil
	default:
		return nil, nil, fmt.Errorf("codec: unknown compression %d", c)
	}
}

// detectCompression peeks at the stream and returns a reader yielding the
// uncompressed flat format.
func detectCompression(br *bufio.Reader) (io.Reader, Compression, func(), error) {
	magic, err := br.Peek(4)
	if err != nil {
		// Too short to hold any magic; leave it to the header read to report.
		return br, CompressionNone, func() {}, nil
	}

	switch {
	case bytes.Equal(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, CompressionNone, nil, err
		}
		return dec, CompressionZstd, dec.Close, nil
	case bytes.Equal(magic, lz4Magic):
		return lz4.NewReader(br), CompressionLZ4, func() {}, nil
	default:
		return br, CompressionNone, func() {}, nil
	}
}
