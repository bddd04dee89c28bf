package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxReserveUnsized caps Sink.Reserve when the stream size is unknown, so a
// corrupt count cannot force a huge up-front allocation.
const maxReserveUnsized = 1 << 16

// Decoder reads vector streams from an io.Reader.
type Decoder struct {
	r      io.Reader
	opts   options
	header FileHeader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{r: r, opts: o}
}

// Header returns the file header read by the last Decode.
func (d *Decoder) Header() FileHeader {
	return d.header
}

// Decode reads a complete stream into dst.
//
// Truncated input, negative counts and counts exceeding the size hint fail
// with an error matching ErrCorrupt. Bytes after the last vector are ignored.
func (d *Decoder) Decode(dst Sink) error {
	br := bufio.NewReader(d.r)
	r, compression, closeFrame, err := detectCompression(br)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer closeFrame()

	// The hint describes the raw stream; it says nothing about decompressed sizes.
	remaining := d.opts.sizeHint
	if compression != CompressionNone {
		remaining = -1
	}

	rd := &reader{r: r, compressed: compression != CompressionNone}

	h, err := rd.fileHeader()
	if err != nil {
		return err
	}
	d.header = h

	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.NumVectors < 0 {
		return fmt.Errorf("%w: negative vector count %d", ErrCorrupt, h.NumVectors)
	}

	n := int(h.NumVectors)
	reserve := n
	if remaining >= 0 {
		remaining -= FileHeaderSize
		if need := int64(n) * VectorHeaderSize; need > remaining {
			return fmt.Errorf("%w: header declares %d vectors but only %d bytes remain", ErrCorrupt, n, remaining)
		}
	} else {
		reserve = min(n, maxReserveUnsized)
	}

	if err := dst.Reserve(reserve); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		vh, err := rd.vectorHeader()
		if err != nil {
			return fmt.Errorf("vector %d of %d: %w", i, n, err)
		}
		if vh.VectorSize < 0 {
			return fmt.Errorf("%w: vector %d has negative size %d", ErrCorrupt, i, vh.VectorSize)
		}

		size := int(vh.VectorSize)
		if remaining >= 0 {
			remaining -= VectorHeaderSize
			// Every vector still to come needs at least its header.
			need := int64(size)*ComponentSize + int64(n-i-1)*VectorHeaderSize
			if need > remaining {
				return fmt.Errorf("%w: vector %d declares %d components but only %d bytes remain", ErrCorrupt, i, size, remaining)
			}
			remaining -= int64(size) * ComponentSize
		}

		c, err := rd.components(size, d.opts.components, remaining >= 0)
		if err != nil {
			return fmt.Errorf("vector %d of %d: %w", i, n, err)
		}
		if err := dst.AppendComponents(c); err != nil {
			return err
		}
	}

	return nil
}

type reader struct {
	r          io.Reader
	compressed bool
	scratch    [chunkComponents * ComponentSize]byte
}

func (rd *reader) readFull(p []byte, what string) error {
	if _, err := io.ReadFull(rd.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated %s", ErrCorrupt, what)
		}
		if rd.compressed {
			return fmt.Errorf("%w: read %s: %w", ErrCorrupt, what, err)
		}
		return fmt.Errorf("codec: read %s: %w", what, err)
	}
	return nil
}

func (rd *reader) fileHeader() (FileHeader, error) {
	buf := rd.scratch[:FileHeaderSize]
	if err := rd.readFull(buf, "file header"); err != nil {
		return FileHeader{}, err
	}
	return FileHeader{
		Version:    int32(binary.LittleEndian.Uint32(buf[0:])),
		NumVectors: int32(binary.LittleEndian.Uint32(buf[4:])),
	}, nil
}

func (rd *reader) vectorHeader() (VectorHeader, error) {
	buf := rd.scratch[:VectorHeaderSize]
	if err := rd.readFull(buf, "vector header"); err != nil {
		return VectorHeader{}, err
	}
	return VectorHeader{VectorSize: int32(binary.LittleEndian.Uint32(buf))}, nil
}

// components reads size components. With a verified size it allocates the
// exact slice up front; otherwise it grows chunk by chunk as data arrives.
func (rd *reader) components(size int, enc Components, verified bool) ([]float32, error) {
	var c []float32
	if verified {
		c = make([]float32, 0, size)
	} else {
		c = make([]float32, 0, min(size, chunkComponents))
	}

	for left := size; left > 0; {
		k := min(left, chunkComponents)
		buf := rd.scratch[:k*ComponentSize]
		if err := rd.readFull(buf, "vector data"); err != nil {
			return nil, err
		}
		for j := 0; j < k; j++ {
			c = append(c, componentValue(binary.LittleEndian.Uint32(buf[j*ComponentSize:]), enc))
		}
		left -= k
	}

	if cap(c) != size {
		c = append(make([]float32, 0, size), c...)
	}
	return c, nil
}

func componentValue(bits uint32, enc Components) float32 {
	if enc == Int32 {
		return float32(int32(bits))
	}
	return math.Float32frombits(bits)
}
