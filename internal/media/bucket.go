package media

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// objectWriterFunc opens a writer for one object. Canceling ctx before Close
// abandons the object.
type objectWriterFunc func(ctx context.Context, object, contentType string) io.WriteCloser

// BucketStore writes uploads into a Cloud Storage bucket under the uploads/ prefix.
type BucketStore struct {
	newWriter objectWriterFunc
}

// NewBucketStore resolves bucketName through a Firebase app using application
// default credentials.
func NewBucketStore(ctx context.Context, bucketName string) (*BucketStore, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName})
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	handle, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return &BucketStore{newWriter: bucketWriter(handle)}, nil
}

func bucketWriter(handle *gcs.BucketHandle) objectWriterFunc {
	return func(ctx context.Context, object, contentType string) io.WriteCloser {
		w := handle.Object(object).NewWriter(ctx)
		if contentType != "" {
			w.ContentType = contentType
		}
		return w
	}
}

func (b *BucketStore) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.newWriter(ctx, PathPrefix+name, contentType)
	if _, err := io.Copy(w, r); err != nil {
		// Cancel first so the partial object is not committed.
		cancel()
		w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}

	logg.Debug("media", "Stored upload "+name+" in bucket")
	return nil
}
