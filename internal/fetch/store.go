package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore moves whole objects between a bucket and local files.
type ObjectStore interface {
	Download(ctx context.Context, loc Location, w io.WriterAt) (int64, error)
	Upload(ctx context.Context, loc Location, r io.Reader) error
}

// S3Store is an ObjectStore backed by the S3 transfer manager.
type S3Store struct {
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}
}

// NewS3StoreFromEnv builds a client from the default credential chain.
// An empty region keeps the region of the environment.
func NewS3StoreFromEnv(ctx context.Context, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg)), nil
}

func (s *S3Store) Download(ctx context.Context, loc Location, w io.WriterAt) (int64, error) {
	n, err := s.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return n, fmt.Errorf("download %s: %w", loc, err)
	}
	return n, nil
}

func (s *S3Store) Upload(ctx context.Context, loc Location, r io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", loc, err)
	}
	return nil
}
