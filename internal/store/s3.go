package store

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"yt-network-go/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// objectPutter is the part of *s3.Client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies the files of a run to <prefix>/<run id>/<name>.
type S3Uploader struct {
	client objectPutter
	bucket string
	prefix string
}

func NewS3Uploader(cfg S3Config) *S3Uploader {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	return &S3Uploader{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
}

// NewS3UploaderFromConfig returns nil when no bucket is configured.
func NewS3UploaderFromConfig(cfg config.Config) *S3Uploader {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil
	}
	return NewS3Uploader(S3Config{
		Endpoint:        strings.TrimSpace(cfg.S3Endpoint),
		Region:          cfg.S3Region,
		Bucket:          strings.TrimSpace(cfg.S3Bucket),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Prefix:          cfg.S3Prefix,
	})
}

func (u *S3Uploader) key(runID, file string) string {
	return path.Join(u.prefix, runID, filepath.Base(file))
}

// UploadFiles returns the keys written before the first failure.
func (u *S3Uploader) UploadFiles(ctx context.Context, runID string, paths []string) ([]string, error) {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return keys, err
		}
		st, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return keys, err
		}
		key := u.key(runID, p)
		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(u.bucket),
			Key:           aws.String(key),
			Body:          f,
			ContentType:   aws.String(contentType(p)),
			ContentLength: aws.Int64(st.Size()),
		})
		_ = f.Close()
		if err != nil {
			return keys, fmt.Errorf("uploading %s to s3: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".graphml":
		return "application/xml"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if t := mime.TypeByExtension(filepath.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
