// Package tinyvec provides a minimal embedded vector store for Go.
//
// Vectors are growable float32 sequences. A Store owns the vectors added to
// it and answers nearest-neighbor queries by exhaustive scan.
//
// # Quick Start
//
//	store, _ := tinyvec.NewStore(0)
//	_ = store.Add(tinyvec.VectorOf(1, 0))
//	_ = store.Add(tinyvec.VectorOf(0, 1))
//
//	v, _ := store.Nearest(ctx, tinyvec.VectorOf(1, 0))
//	fmt.Println(v) // [0 1]
//
// # Scoring
//
// The nearest vector is the one with the lowest dot product against the
// query. Ties keep the vector added first. Search additionally reports the
// index and score, and accepts a roaring bitmap filter and a parallelism
// setting:
//
//	m, _ := store.Search(ctx, query,
//	    tinyvec.WithFilter(roaring.BitmapOf(0, 2, 5)),
//	    tinyvec.WithParallelism(4),
//	)
//
// # Persistence
//
// Stores are persisted in a flat little-endian format (see package codec):
//
//	_ = store.WriteToFile("vectors.tv")
//	store, _ = tinyvec.ReadFromFile("vectors.tv")
//
// or through any blobstore.BlobStore, including S3 and MinIO:
//
//	_ = store.Save(ctx, s3Store, "vectors.tv")
//	store, _ = tinyvec.Load(ctx, s3Store, "vectors.tv")
//
// Writes can be compressed with WithCompression; reads detect it.
//
// # Errors
//
// Failures are reported with sentinel errors usable with errors.Is:
// ErrAllocation, ErrIO, ErrCorrupt, ErrDimension, ErrEmptyStore and
// ErrNilQuery, among others. Dimension errors carry the lengths as
// *ErrDimensionMismatch.
//
// # Observability
//
// WithLogger accepts a slog-based Logger and WithMetrics a MetricsCollector;
// see metrics/prometheus for a Prometheus collector. Both are disabled by default.
package tinyvec
