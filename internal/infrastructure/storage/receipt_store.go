// Package storage stores receipt files in Google Cloud Storage.
package storage

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/Pari658/Expense-Management/pkg/helpers"
)

type GCSReceiptStore struct {
	client *storage.Client
	bucket string
}

func NewGCSReceiptStore(client *storage.Client, bucket string) *GCSReceiptStore {
	return &GCSReceiptStore{client: client, bucket: bucket}
}

func (s *GCSReceiptStore) Put(ctx context.Context, objectPath, contentType string, metadata map[string]string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, objectPath, contentType, metadata, r)
}
