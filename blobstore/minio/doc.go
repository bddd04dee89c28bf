// Package minio provides a BlobStore backed by the MinIO client.
//
// It works against MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage without pulling in the AWS SDK.
//
//	store, err := minio.Dial("localhost:9000", "vectors", minio.Config{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Prefix:    "tinyvec/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = vs.Save(ctx, store, "embeddings.tv")
package minio
