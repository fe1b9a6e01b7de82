package helpers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// receiptTypes maps accepted receipt content types to their canonical extension.
var receiptTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	opts := []option.ClientOption{option.WithUserAgent("expense-management")}
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	return storage.NewClient(ctx, opts...)
}

// UploadObject writes r to bucket/objectPath and returns its public URL.
// The write fails if the object already exists.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, metadata map[string]string, r io.Reader) (string, error) {
	obj := client.Bucket(bucket).Object(objectPath).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = metadata
	wc.CacheControl = "private, max-age=0"
	wc.ChunkSize = 0 // receipts are small; single request upload
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(bucket, objectPath), nil
}

// ReceiptContentType resolves the content type of an uploaded receipt.
// A missing or generic declared type falls back to the file extension.
// ok is false for anything that is not an image or a PDF.
func ReceiptContentType(filename, declared string) (ct string, ok bool) {
	ct, _, _ = mime.ParseMediaType(declared)
	if ct == "" || ct == "application/octet-stream" {
		ct, _, _ = mime.ParseMediaType(mime.TypeByExtension(strings.ToLower(path.Ext(filename))))
	}
	_, ok = receiptTypes[ct]
	return ct, ok
}

// ReceiptObjectPath builds receipts/<company>/<expense>/<id><ext>, with the
// extension taken from the content type.
func ReceiptObjectPath(companyID, expenseID, id, contentType string) string {
	return path.Join("receipts", companyID, expenseID, id+receiptTypes[contentType])
}

// PublicURL builds the https URL of an object.
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
