package resource

import (
	"context"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

var ErrInvalidObjectConfig = errors.New("invalid object storage configuration")

// ObjectConfig configures an S3-compatible object storage.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Validate checks the mandatory fields.
func (c ObjectConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Endpoint) == "":
		return errors.Wrap(ErrInvalidObjectConfig, "endpoint is required")
	case strings.Contains(c.Endpoint, "://"):
		return errors.Wrapf(ErrInvalidObjectConfig, "endpoint must not include scheme: %q", c.Endpoint)
	case strings.TrimSpace(c.AccessKey) == "":
		return errors.Wrap(ErrInvalidObjectConfig, "access key is required")
	case strings.TrimSpace(c.SecretKey) == "":
		return errors.Wrap(ErrInvalidObjectConfig, "secret key is required")
	case strings.TrimSpace(c.Bucket) == "":
		return errors.Wrap(ErrInvalidObjectConfig, "bucket is required")
	}

	return nil
}

// ObjectFileManager stores files in an S3-compatible bucket.
type ObjectFileManager struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectFileManager creates a file manager uploading to cfg.Bucket. No request is sent before the first write.
func NewObjectFileManager(cfg ObjectConfig) (*ObjectFileManager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create object storage client")
	}

	return &ObjectFileManager{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

// ObjectKey returns the object key a file written under key is stored at.
func (m *ObjectFileManager) ObjectKey(key string) string {
	if m.prefix == "" {
		return key
	}

	return m.prefix + "/" + key
}

// WriteFile uploads src to the bucket.
func (m *ObjectFileManager) WriteFile(ctx context.Context, key, src string) (FileHandle, error) {
	file, err := os.Open(src)
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to open %s", src)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to stat %s", src)
	}

	objectKey := m.ObjectKey(key)

	info, err := m.client.PutObject(ctx, m.bucket, objectKey, file, stat.Size(), minio.PutObjectOptions{
		ContentType: contentType(src),
	})
	if err != nil {
		return FileHandle{}, errors.Wrapf(err, "unable to upload %s to %s/%s", src, m.bucket, objectKey)
	}

	return FileHandle{URI: "s3://" + m.bucket + "/" + objectKey, Size: info.Size}, nil
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".ipynb") {
		return "application/x-ipynb+json"
	}

	return "application/octet-stream"
}

var _ FileManager = (*ObjectFileManager)(nil)
