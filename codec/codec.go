// Package codec implements the flat binary format used to persist a vector store.
//
// All integers are little-endian and fixed-width, with no padding:
//
//	FileHeader:   version int32 (= Version), num_vectors int32
//	repeated num_vectors times:
//	  VectorHeader: vector_size int32
//	  VectorData:   vector_size × 4-byte components
//
// Components are IEEE-754 float32 bit patterns by default. This is the same
// byte image the original C tool produced when it fwrite'd its float buffers.
// Callers that need integer payloads can opt into [Int32], which truncates on
// write and widens on read; both sides must agree on the encoding since the
// format does not record it.
//
// A stream may additionally be framed with zstd or lz4. Decoders detect the
// frame magic and decompress transparently.
package codec

import (
	"errors"
	"fmt"
)

const (
	// Version is the only supported format version.
	Version int32 = 1

	// FileHeaderSize is the encoded size of FileHeader in bytes.
	FileHeaderSize = 8
	// VectorHeaderSize is the encoded size of VectorHeader in bytes.
	VectorHeaderSize = 4
	// ComponentSize is the encoded size of one component in bytes.
	ComponentSize = 4
)

var (
	// ErrCorrupt is returned when the input is truncated or declares
	// counts that cannot be satisfied.
	ErrCorrupt = errors.New("corrupt vector file")

	// ErrUnsupportedVersion is returned for a file header with an unknown version.
	// It matches ErrCorrupt.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrCorrupt)

	// ErrTooLarge is returned when a source does not fit the int32 counts of the format.
	ErrTooLarge = errors.New("too large for vector file format")
)

// FileHeader is the fixed-size record at the start of a stream.
type FileHeader struct {
	Version    int32
	NumVectors int32
}

// VectorHeader precedes each vector's component payload.
type VectorHeader struct {
	VectorSize int32
}

// Source is a sequence of vectors to encode.
type Source interface {
	// Len returns the number of vectors.
	Len() int
	// Components returns the components of vector i. The slice is only read.
	Components(i int) []float32
}

// Sink receives decoded vectors.
type Sink interface {
	// Reserve is called once, before any vector, with the number of vectors
	// to expect (possibly capped when the input size is unknown).
	Reserve(n int) error
	// AppendComponents takes ownership of one decoded vector's components.
	AppendComponents(c []float32) error
}

// Components selects how component values are stored.
type Components uint8

const (
	// Float32 stores IEEE-754 float32 bits.
	Float32 Components = iota
	// Int32 stores components truncated toward zero to int32.
	Int32
)

func (c Components) String() string {
	switch c {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	default:
		return fmt.Sprintf("Components(%d)", c)
	}
}

// Option configures an Encoder or Decoder.
type Option func(*options)

type options struct {
	components  Components
	compression Compression
	sizeHint    int64
}

func defaultOptions() options {
	return options{
		components:  Float32,
		compression: CompressionNone,
		sizeHint:    -1,
	}
}

// WithComponents selects the component encoding. Default Float32.
func WithComponents(c Components) Option {
	return func(o *options) {
		o.components = c
	}
}

// WithCompression frames the encoded stream. It is ignored by decoders,
// which detect compression from the stream itself.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithSizeHint tells a decoder the total byte length of the stream, so that
// headers declaring more data than is available are rejected before any
// allocation. Negative values mean unknown.
func WithSizeHint(n int64) Option {
	return func(o *options) {
		o.sizeHint = n
	}
}
