package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Uploader is the subset of the S3 upload manager the archiver needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver keeps a copy of every exported report in an S3 bucket.
type S3Archiver struct {
	uploader Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewS3Archiver builds an archiver using the default AWS credential chain.
func NewS3Archiver(ctx context.Context, bucket, region string, log zerolog.Logger) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket not set")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3ArchiverWithUploader(manager.NewUploader(s3.NewFromConfig(cfg)), bucket, log), nil
}

// NewS3ArchiverWithUploader builds an archiver around an existing uploader.
func NewS3ArchiverWithUploader(u Uploader, bucket string, log zerolog.Logger) *S3Archiver {
	return &S3Archiver{
		uploader: u,
		bucket:   bucket,
		prefix:   "reports",
		log:      log.With().Str("component", "s3_archiver").Logger(),
	}
}

// ObjectKey is where a report for calculationID is stored.
func (a *S3Archiver) ObjectKey(calculationID string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s.html", a.prefix, at.UTC().Format("2006/01/02"), calculationID)
}

// Archive uploads the HTML report and returns its object key.
func (a *S3Archiver) Archive(ctx context.Context, calculationID string, at time.Time, e Export) (string, error) {
	key := a.ObjectKey(calculationID, at)
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(e.HTML),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	a.log.Info().Str("bucket", a.bucket).Str("key", key).Int64("bytes", e.Size()).Msg("report archived")
	return key, nil
}
