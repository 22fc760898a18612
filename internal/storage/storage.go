package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var ErrUnsupportedType = errors.New("unsupported content type")

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Uploader interface {
	Upload(ctx context.Context, prefix, contentType string, r io.Reader) (string, error)
}

type objectWriter interface {
	io.Writer
	Close() error
}

// GCSUploader stores images in a bucket and returns a Firebase download URL.
type GCSUploader struct {
	bucket string
	open   func(ctx context.Context, object, contentType, token string) objectWriter
	close  func() error
}

// NewGCSUploader uses credentialsFile when set and application default
// credentials otherwise.
func NewGCSUploader(ctx context.Context, bucket, credentialsFile string) (*GCSUploader, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		raw, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, raw, storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{
		bucket: bucket,
		open: func(ctx context.Context, object, contentType, token string) objectWriter {
			w := client.Bucket(bucket).Object(object).NewWriter(ctx)
			w.ContentType = contentType
			w.Metadata = map[string]string{
				"firebaseStorageDownloadTokens": token,
			}
			return w
		},
		close: client.Close,
	}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, prefix, contentType string, r io.Reader) (string, error) {
	ext, ok := imageExt[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	object := path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
	token := uuid.NewString()

	w := u.open(ctx, object, contentType, token)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return publicURL(u.bucket, object, token), nil
}

func (u *GCSUploader) Close() error {
	if u.close == nil {
		return nil
	}
	return u.close()
}

func publicURL(bucket, object, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(object), token)
}

// Disabled rejects every upload. Used when no bucket is configured.
type Disabled struct{}

var ErrDisabled = errors.New("uploads are not configured")

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}
