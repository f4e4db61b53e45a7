package gcs

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const publicHost = "https://storage.googleapis.com"

// Config selects the bucket and credentials used for uploads.
type Config struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
}

// objectWriter is the subset of the storage client used for uploads.
type objectWriter interface {
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
	Close() error
}

// Service stores evidence files and profile photos in a GCS bucket.
type Service struct {
	client objectWriter
	bucket string
	prefix string
	logger zerolog.Logger
}

type storageClient struct {
	*storage.Client
}

func (c storageClient) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := c.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

// New creates a GCS uploader. Without a credentials file the client falls
// back to application default credentials.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	return newService(storageClient{client}, cfg, logger), nil
}

func newService(client objectWriter, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With().Str("component", "gcs").Logger(),
	}
}

// Upload streams reader to <prefix>/<key> and returns the public object URL.
func (s *Service) Upload(ctx context.Context, key string, reader io.Reader) (string, error) {
	object := path.Join(s.prefix, strings.TrimLeft(key, "/"))
	contentType := mime.TypeByExtension(path.Ext(object))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w := s.client.NewWriter(ctx, s.bucket, object, contentType)
	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", object, err)
	}

	s.logger.Info().Str("bucket", s.bucket).Str("object", object).Msg("file uploaded to gcs")

	return objectURL(s.bucket, object), nil
}

// Close releases the underlying client.
func (s *Service) Close() error {
	return s.client.Close()
}

func objectURL(bucket, object string) string {
	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s/%s", publicHost, bucket, strings.Join(segments, "/"))
}
