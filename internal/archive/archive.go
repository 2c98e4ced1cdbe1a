// Package archive stores raw receipt images so the original evidence outlives
// the in-memory transaction record. Archiving is best effort and optional.
package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Archiver stores a receipt image and returns its location.
type Archiver interface {
	Save(ctx context.Context, userID string, image []byte, contentType string) (string, error)
}

// Disabled is the no-op archiver used when no bucket is configured.
type Disabled struct{}

// Save implements Archiver.
func (Disabled) Save(context.Context, string, []byte, string) (string, error) {
	return "", nil
}

// GCS archives receipt images to a Cloud Storage bucket under
// receipts/<user>/<date>/<uuid>.
type GCS struct {
	client *storage.Client
	bucket string
	log    zerolog.Logger
}

// NewGCS creates a GCS archiver. credentialsFile may be empty, in which case
// application default credentials apply.
func NewGCS(ctx context.Context, bucket, credentialsFile string, log zerolog.Logger) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: create storage client: %w", err)
	}

	return &GCS{client: client, bucket: bucket, log: log}, nil
}

// Save implements Archiver. It writes the raw image bytes and returns the
// object URI.
func (g *GCS) Save(ctx context.Context, userID string, image []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("receipts/%s/%s/%s", userID, time.Now().Format("2006/01/02"), uuid.NewString())

	wc := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(image); err != nil {
		return "", fmt.Errorf("archive: writing object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("archive: closing writer: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", g.bucket, objectName)
	g.log.Info().Str("uri", uri).Int("bytes", len(image)).Msg("Receipt image archived")
	return uri, nil
}

// Close releases the underlying storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}
