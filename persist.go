package tinyvec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/tinyvec/blobstore"
	"github.com/hupe1980/tinyvec/codec"
	"github.com/hupe1980/tinyvec/internal/buffer"
	"github.com/hupe1980/tinyvec/internal/resource"
)

// WriteToFile writes the store to path, creating or truncating the file.
//
// A failed write may leave a partial file behind.
func (s *Store) WriteToFile(path string) (err error) {
	ctx := context.Background()
	start := time.Now()
	var n int64
	defer func() { s.recordWrite(ctx, path, n, start, err) }()

	if s.released {
		return ErrReleased
	}

	f, err := s.opts.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return translateIOError("open", err)
	}

	n, err = s.encode(ctx, f)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return translateIOError("close", err)
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (s *Store) WriteTo(w io.Writer) (n int64, err error) {
	ctx := context.Background()
	start := time.Now()
	defer func() { s.recordWrite(ctx, "stream", n, start, err) }()

	if s.released {
		return 0, ErrReleased
	}
	return s.encode(ctx, w)
}

// Save writes the store as blob name. The blob is discarded if the write fails.
func (s *Store) Save(ctx context.Context, bs blobstore.BlobStore, name string) (err error) {
	start := time.Now()
	var n int64
	defer func() { s.recordWrite(ctx, name, n, start, err) }()

	if s.released {
		return ErrReleased
	}

	w, err := bs.Create(ctx, name)
	if err != nil {
		return translateIOError("create blob", err)
	}

	n, err = s.encode(ctx, w)
	if err != nil {
		_ = w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		return translateIOError("commit blob", err)
	}
	return nil
}

func (s *Store) encode(ctx context.Context, w io.Writer) (int64, error) {
	if s.rc != nil && s.opts.ioLimit > 0 {
		w = resource.NewRateLimitedWriter(ctx, w, s.rc)
	}

	enc := codec.NewEncoder(w,
		codec.WithCompression(s.opts.compression),
		codec.WithComponents(s.opts.components),
	)
	n, err := enc.Encode(source{s})
	return n, translateIOError("write", err)
}

func (s *Store) recordWrite(ctx context.Context, target string, n int64, start time.Time, err error) {
	s.opts.metricsCollector.RecordWrite(n, time.Since(start), err)
	s.opts.logger.LogWrite(ctx, target, s.Len(), n, err)
}

// ReadFromFile reads a store written by WriteToFile.
//
// It never returns a partially loaded store: on error the result is nil.
func ReadFromFile(path string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)
	return load(context.Background(), o, path, func() (io.Reader, int64, func() error, error) {
		f, err := o.fs.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			return nil, 0, nil, translateIOError("open", err)
		}
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, 0, nil, translateIOError("stat", err)
		}
		return f, fi.Size(), f.Close, nil
	})
}

// ReadFrom reads a store from r. The stream size is unknown, so large
// allocations are made incrementally as data arrives.
func ReadFrom(r io.Reader, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)
	return load(context.Background(), o, "stream", func() (io.Reader, int64, func() error, error) {
		return r, -1, nil, nil
	})
}

// Load reads a store saved as blob name.
func Load(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)
	return load(ctx, o, name, func() (io.Reader, int64, func() error, error) {
		b, err := bs.Open(ctx, name)
		if err != nil {
			return nil, 0, nil, translateIOError("open blob", err)
		}
		if m, ok := b.(blobstore.Mappable); ok {
			if data, err := m.Bytes(); err == nil {
				return bytes.NewReader(data), b.Size(), b.Close, nil
			}
		}
		return io.NewSectionReader(blobReaderAt{ctx: ctx, b: b}, 0, b.Size()), b.Size(), b.Close, nil
	})
}

type openFunc func() (r io.Reader, size int64, closeFn func() error, err error)

func load(ctx context.Context, o options, name string, open openFunc) (s *Store, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if s != nil {
			n = s.Len()
		}
		o.metricsCollector.RecordRead(n, time.Since(start), err)
		o.logger.LogRead(ctx, name, n, err)
	}()

	r, size, closeFn, err := open()
	if err != nil {
		return nil, err
	}

	s, err = decode(ctx, o, r, size)
	if closeFn != nil {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = translateIOError("close", cerr)
		}
	}
	if err != nil {
		if s != nil {
			s.Release()
		}
		return nil, err
	}
	return s, nil
}

func decode(ctx context.Context, o options, r io.Reader, size int64) (*Store, error) {
	rc := o.controller()
	if rc != nil && o.ioLimit > 0 {
		r = resource.NewRateLimitedReader(ctx, r, rc)
	}

	slots, err := buffer.New[*Vector](0, buffer.WithController(rc))
	if err != nil {
		return nil, err
	}
	s := &Store{slots: slots, rc: rc, opts: o}

	dec := codec.NewDecoder(r,
		codec.WithComponents(o.components),
		codec.WithSizeHint(size),
	)
	if err := dec.Decode(sink{s}); err != nil {
		return s, translateIOError("read", err)
	}
	return s, nil
}

// source exposes a store to the encoder.
type source struct{ s *Store }

func (src source) Len() int { return src.s.slots.Len() }

func (src source) Components(i int) []float32 { return src.s.slots.At(i).buf.Slice() }

// sink builds a store from decoded vectors. Decoded components are adopted
// without copying and accounted against the store's memory budget.
type sink struct{ s *Store }

func (dst sink) Reserve(n int) error {
	slots, err := buffer.New[*Vector](n, buffer.WithController(dst.s.rc))
	if err != nil {
		return err
	}
	dst.s.slots.Release()
	dst.s.slots = slots
	return nil
}

func (dst sink) AppendComponents(c []float32) error {
	buf, err := buffer.Wrap(c, buffer.WithController(dst.s.rc))
	if err != nil {
		return err
	}
	v := &Vector{buf: buf}
	if _, err := dst.s.add(v); err != nil {
		buf.Release()
		return err
	}
	return nil
}

// blobReaderAt adapts a blob to io.ReaderAt for a fixed context.
type blobReaderAt struct {
	ctx context.Context
	b   blobstore.Blob
}

func (r blobReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n, err := r.b.ReadAt(r.ctx, p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("blob read at %d: %w", off, err)
	}
	return n, err
}
