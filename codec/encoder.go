package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// chunkComponents bounds the scratch space used per write.
const chunkComponents = 4096

// Encoder writes vector streams to an io.Writer.
type Encoder struct {
	w    io.Writer
	opts options
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Encoder{w: w, opts: o}
}

// Encode writes the file header followed by every vector of src in order.
// It returns the number of bytes written to the underlying writer.
func (e *Encoder) Encode(src Source) (int64, error) {
	n := src.Len()
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d vectors", ErrTooLarge, n)
	}

	cw := &countingWriter{w: e.w}
	zw, closeFrame, err := compressWriter(cw, e.opts.compression)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(zw)

	if err := writeFileHeader(bw, FileHeader{Version: Version, NumVectors: int32(n)}); err != nil {
		return cw.n, fmt.Errorf("codec: write file header: %w", err)
	}

	scratch := make([]byte, chunkComponents*ComponentSize)
	for i := 0; i < n; i++ {
		c := src.Components(i)
		if len(c) > math.MaxInt32 {
			return cw.n, fmt.Errorf("%w: vector %d has %d components", ErrTooLarge, i, len(c))
		}
		if err := writeVectorHeader(bw, VectorHeader{VectorSize: int32(len(c))}); err != nil {
			return cw.n, fmt.Errorf("codec: write vector %d header: %w", i, err)
		}
		if err := e.writeComponents(bw, c, scratch); err != nil {
			return cw.n, fmt.Errorf("codec: write vector %d data: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("codec: flush: %w", err)
	}
	if err := closeFrame(); err != nil {
		return cw.n, fmt.Errorf("codec: close %s frame: %w", e.opts.compression, err)
	}
	return cw.n, nil
}

func (e *Encoder) writeComponents(w io.Writer, c []float32, scratch []byte) error {
	for len(c) > 0 {
		k := min(len(c), chunkComponents)
		buf := scratch[:k*ComponentSize]
		for j, v := range c[:k] {
			binary.LittleEndian.PutUint32(buf[j*ComponentSize:], e.componentBits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		c = c[k:]
	}
	return nil
}

func (e *Encoder) componentBits(v float32) uint32 {
	if e.opts.components == Int32 {
		return uint32(truncateInt32(v))
	}
	return math.Float32bits(v)
}

// truncateInt32 converts v toward zero, saturating at the int32 range.
// NaN maps to 0.
func truncateInt32(v float32) int32 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

func writeFileHeader(w io.Writer, h FileHeader) error {
	var buf [FileHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(h.Version))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.NumVectors))
	_, err := w.Write(buf[:])
	return err
}

func writeVectorHeader(w io.Writer, h VectorHeader) error {
	var buf [VectorHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(h.VectorSize))
	_, err := w.Write(buf[:])
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
