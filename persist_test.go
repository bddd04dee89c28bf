package tinyvec

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/tinyvec/blobstore"
	"github.com/hupe1980/tinyvec/codec"
	"github.com/hupe1980/tinyvec/internal/fs"
	"github.com/hupe1980/tinyvec/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSameVectors(t *testing.T, want [][]float32, s *Store) {
	t.Helper()
	require.Equal(t, len(want), s.Len())
	for i, v := range s.All() {
		require.Equal(t, len(want[i]), v.Len(), "vector %d", i)
		if len(want[i]) > 0 {
			assert.Equal(t, want[i], v.Values(), "vector %d", i)
		}
	}
}

func sampleVectors() [][]float32 {
	return [][]float32{
		{1, 2, 3},
		{},
		{-0.5, 1e-7, 3.25, float32(math.Inf(1))},
		{42},
	}
}

func TestWriteReadFile_RoundTrip(t *testing.T) {
	cases := map[string][][]float32{
		"Empty":   nil,
		"Single":  {{1, 2, 3}},
		"Varying": sampleVectors(),
	}

	for name, vectors := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, vectors...)
			path := filepath.Join(t.TempDir(), "store.tv")
			require.NoError(t, s.WriteToFile(path))

			loaded, err := ReadFromFile(path)
			require.NoError(t, err)
			defer loaded.Release()
			requireSameVectors(t, vectors, loaded)

			for _, v := range loaded.All() {
				// Decoded vectors are sized exactly.
				assert.Equal(t, v.Len(), v.Cap())
			}
		})
	}
}

func TestWriteReadFile_RandomRoundTrips(t *testing.T) {
	rng := testutil.NewRNG(7)
	dir := t.TempDir()

	for i := range 10 {
		vectors := rng.VaryingVectors(rng.IntN(50), 20)
		s := newTestStore(t, vectors...)

		path := filepath.Join(dir, fmt.Sprintf("store-%d.tv", i))
		require.NoError(t, s.WriteToFile(path))

		loaded, err := ReadFromFile(path)
		require.NoError(t, err)
		requireSameVectors(t, vectors, loaded)
		loaded.Release()
	}
}

func TestWriteToFile_Layout(t *testing.T) {
	s := newTestStore(t, []float32{1, 2}, []float32{3})
	path := filepath.Join(t.TempDir(), "store.tv")
	require.NoError(t, s.WriteToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 8+4+8+4+4)

	le := binary.LittleEndian
	assert.Equal(t, uint32(1), le.Uint32(data[0:]))
	assert.Equal(t, uint32(2), le.Uint32(data[4:]))
	assert.Equal(t, uint32(2), le.Uint32(data[8:]))
	assert.Equal(t, math.Float32bits(1), le.Uint32(data[12:]))
	assert.Equal(t, math.Float32bits(2), le.Uint32(data[16:]))
	assert.Equal(t, uint32(1), le.Uint32(data[20:]))
	assert.Equal(t, math.Float32bits(3), le.Uint32(data[24:]))
}

func TestReadFromFile_Truncated(t *testing.T) {
	// Header declares five vectors, data holds two.
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, int32(1))
	_ = binary.Write(&buf, le, int32(5))
	for range 2 {
		_ = binary.Write(&buf, le, int32(1))
		_ = binary.Write(&buf, le, float32(7))
	}

	path := filepath.Join(t.TempDir(), "short.tv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	s, err := ReadFromFile(path)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrCorrupt)

	s, err = ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFromFile(filepath.Join(dir, "missing.tv"))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.tv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadFromFile(empty)
	assert.ErrorIs(t, err, ErrCorrupt)

	badVersion := filepath.Join(dir, "v2.tv")
	require.NoError(t, os.WriteFile(badVersion, []byte{2, 0, 0, 0, 0, 0, 0, 0}, 0o644))
	_, err = ReadFromFile(badVersion)
	assert.ErrorIs(t, err, codec.ErrUnsupportedVersion)
	assert.ErrorIs(t, err, ErrCorrupt)

	negative := filepath.Join(dir, "neg.tv")
	require.NoError(t, os.WriteFile(negative, []byte{1, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}, 0o644))
	_, err = ReadFromFile(negative)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestWriteToFile_Errors(t *testing.T) {
	s := newTestStore(t, []float32{1, 2, 3})

	err := s.WriteToFile(filepath.Join(t.TempDir(), "no", "such", "dir.tv"))
	assert.ErrorIs(t, err, ErrIO)

	released, err := NewStore(0)
	require.NoError(t, err)
	released.Release()
	assert.ErrorIs(t, released.WriteToFile(filepath.Join(t.TempDir(), "x.tv")), ErrReleased)
}

func TestWriteToFile_InjectedFaults(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"Open", fs.Fault{FailOnOpen: true, FailAfterBytes: -1, FailAfterReads: -1}},
		{"AfterBytes", fs.Fault{FailAfterBytes: 10, FailAfterReads: -1}},
		{"Close", fs.Fault{FailOnClose: true, FailAfterBytes: -1, FailAfterReads: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule("store.tv", tt.fault)

			s, err := NewStore(0, withFileSystem(ffs))
			require.NoError(t, err)
			defer s.Release()
			require.NoError(t, s.Add(VectorOf(1, 2, 3, 4)))

			err = s.WriteToFile(filepath.Join(t.TempDir(), "store.tv"))
			assert.ErrorIs(t, err, ErrIO)
			assert.ErrorIs(t, err, fs.ErrInjected)
		})
	}
}

func TestReadFromFile_InjectedReadFault(t *testing.T) {
	s := newTestStore(t, sampleVectors()...)
	path := filepath.Join(t.TempDir(), "store.tv")
	require.NoError(t, s.WriteToFile(path))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("store.tv", fs.Fault{FailAfterBytes: -1, FailAfterReads: 0})

	loaded, err := ReadFromFile(path, withFileSystem(ffs))
	assert.Nil(t, loaded)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestWriteReadStream(t *testing.T) {
	vectors := sampleVectors()
	s := newTestStore(t, vectors...)

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	loaded, err := ReadFrom(&buf)
	require.NoError(t, err)
	defer loaded.Release()
	requireSameVectors(t, vectors, loaded)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteTo_Error(t *testing.T) {
	s := newTestStore(t, []float32{1})
	_, err := s.WriteTo(failingWriter{})
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPersist_Compression(t *testing.T) {
	vectors := make([][]float32, 200)
	for i := range vectors {
		vectors[i] = []float32{1, 1, 1, 1, 1, 1, 1, 1}
	}

	for _, c := range []codec.Compression{codec.CompressionZstd, codec.CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			s, err := NewStore(0, WithCompression(c))
			require.NoError(t, err)
			defer s.Release()
			for _, v := range vectors {
				require.NoError(t, s.Add(VectorOf(v...)))
			}

			path := filepath.Join(t.TempDir(), "store.tv")
			require.NoError(t, s.WriteToFile(path))

			fi, err := os.Stat(path)
			require.NoError(t, err)
			assert.Less(t, fi.Size(), int64(8+200*(4+8*4)))

			// Readers detect compression without being told.
			loaded, err := ReadFromFile(path)
			require.NoError(t, err)
			defer loaded.Release()
			requireSameVectors(t, vectors, loaded)
		})
	}
}

func TestPersist_Int32Components(t *testing.T) {
	s := newTestStore(t, []float32{1.9, -2.7, 3})

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	raw := bytes.Clone(buf.Bytes())

	loaded, err := ReadFrom(&buf, WithComponentEncoding(codec.Int32))
	require.NoError(t, err)
	defer loaded.Release()
	// Float32 bits reinterpreted as integers.
	assert.Equal(t, float32(int32(math.Float32bits(1.9))), loaded.At(0).At(0))

	s2, err := NewStore(0, WithComponentEncoding(codec.Int32))
	require.NoError(t, err)
	defer s2.Release()
	require.NoError(t, s2.Add(VectorOf(1.9, -2.7, 3)))

	buf.Reset()
	_, err = s2.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotEqual(t, raw, buf.Bytes())

	loaded2, err := ReadFrom(&buf, WithComponentEncoding(codec.Int32))
	require.NoError(t, err)
	defer loaded2.Release()
	assert.Equal(t, []float32{1, -2, 3}, loaded2.At(0).Values())
}

func TestReadFromFile_MemoryLimit(t *testing.T) {
	s := newTestStore(t, make([]float32, 64), make([]float32, 64))
	path := filepath.Join(t.TempDir(), "store.tv")
	require.NoError(t, s.WriteToFile(path))

	// Two slots plus one 64-component vector, but not the second.
	_, err := ReadFromFile(path, WithMemoryLimit(16+256+100))
	assert.ErrorIs(t, err, ErrAllocation)

	loaded, err := ReadFromFile(path, WithMemoryLimit(16+512))
	require.NoError(t, err)
	assert.Equal(t, int64(16+512), loaded.MemoryUsage())
	loaded.Release()
	assert.Equal(t, int64(0), loaded.MemoryUsage())
}

func TestPersist_IOLimit(t *testing.T) {
	vectors := sampleVectors()
	s, err := NewStore(0, WithIOLimit(1<<20))
	require.NoError(t, err)
	defer s.Release()
	for _, v := range vectors {
		require.NoError(t, s.Add(VectorOf(v...)))
	}

	var buf bytes.Buffer
	_, err = s.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := ReadFrom(&buf, WithIOLimit(1<<20))
	require.NoError(t, err)
	defer loaded.Release()
	requireSameVectors(t, vectors, loaded)
}

func TestSaveLoad_BlobStores(t *testing.T) {
	stores := map[string]blobstore.BlobStore{
		"Memory": blobstore.NewMemoryStore(),
		"Local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, bs := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			vectors := sampleVectors()
			s := newTestStore(t, vectors...)

			require.NoError(t, s.Save(ctx, bs, "snapshots/store.tv"))

			names, err := bs.List(ctx, "snapshots/")
			require.NoError(t, err)
			assert.Equal(t, []string{"snapshots/store.tv"}, names)

			loaded, err := Load(ctx, bs, "snapshots/store.tv")
			require.NoError(t, err)
			defer loaded.Release()
			requireSameVectors(t, vectors, loaded)

			_, err = Load(ctx, bs, "snapshots/missing.tv")
			assert.ErrorIs(t, err, ErrIO)
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

// unmappedStore hides the Mappable fast path so range reads are exercised.
type unmappedStore struct {
	blobstore.BlobStore
}

type unmappedBlob struct {
	blobstore.Blob
}

func (u unmappedStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := u.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return unmappedBlob{b}, nil
}

func TestLoad_RangeReads(t *testing.T) {
	ctx := context.Background()
	bs := unmappedStore{blobstore.NewMemoryStore()}
	vectors := sampleVectors()

	s := newTestStore(t, vectors...)
	require.NoError(t, s.Save(ctx, bs, "store.tv"))

	loaded, err := Load(ctx, bs, "store.tv")
	require.NoError(t, err)
	defer loaded.Release()
	requireSameVectors(t, vectors, loaded)

	require.NoError(t, bs.Put(ctx, "short.tv", []byte{1, 0, 0, 0, 3, 0, 0, 0}))
	_, err = Load(ctx, bs, "short.tv")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSave_AbortsOnError(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	s, err := NewStore(0, WithIOLimit(1))
	require.NoError(t, err)
	defer s.Release()
	require.NoError(t, s.Add(VectorOf(1, 2, 3)))

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	err = s.Save(canceled, bs, "store.tv")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = bs.Open(ctx, "store.tv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestPersist_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	s, err := NewStore(0, WithMetrics(mc))
	require.NoError(t, err)
	defer s.Release()
	require.NoError(t, s.Add(VectorOf(1, 2)))

	var buf bytes.Buffer
	_, err = s.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := ReadFrom(&buf, WithMetrics(mc))
	require.NoError(t, err)
	defer loaded.Release()

	_, err = ReadFrom(bytes.NewReader(nil), WithMetrics(mc))
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.WriteCount)
	assert.Equal(t, int64(20), stats.WriteBytes)
	assert.Equal(t, int64(2), stats.ReadCount)
	assert.Equal(t, int64(1), stats.ReadErrors)
	assert.Equal(t, int64(1), stats.ReadVectors)
}
