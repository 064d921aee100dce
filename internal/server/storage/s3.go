package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/siteadmin/internal/common"
)

// cacheControl matches what the public site expects for immutable uploads.
const cacheControl = "max-age=3600"

// S3Client is the subset of *s3.Client used by S3Storage.
type S3Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Config holds connection settings for an S3-compatible backend.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// S3Storage implements Storage on top of an S3-compatible service.
type S3Storage struct {
	client        S3Client
	bucketPrefix  string
	publicBaseURL string
}

// NewS3Client builds an *s3.Client with static credentials and path-style
// addressing, which MinIO and most S3-compatible services require.
func NewS3Client(ctx context.Context, c S3Config) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// NewS3Storage wraps client. bucketPrefix is prepended to every logical
// bucket name; publicBaseURL is the origin assets are served from.
func NewS3Storage(client S3Client, bucketPrefix, publicBaseURL string) *S3Storage {
	return &S3Storage{
		client:        client,
		bucketPrefix:  bucketPrefix,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3Storage) bucketName(b Bucket) string {
	return s.bucketPrefix + string(b)
}

func (s *S3Storage) Upload(ctx context.Context, bucket Bucket, obj Object) error {
	in := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName(bucket)),
		Key:          aws.String(obj.Path),
		Body:         obj.Body,
		ContentType:  aws.String(obj.ContentType),
		CacheControl: aws.String(cacheControl),
		IfNoneMatch:  aws.String("*"),
	}
	if obj.Size > 0 {
		in.ContentLength = aws.Int64(obj.Size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return fmt.Errorf("%w: %s/%s", common.ErrorAlreadyExists, bucket, obj.Path)
		}
		return fmt.Errorf("%w: put %s/%s: %w", common.ErrStorage, bucket, obj.Path, err)
	}
	return nil
}

func (s *S3Storage) Remove(ctx context.Context, bucket Bucket, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, len(paths))
	for i, p := range paths {
		objects[i] = types.ObjectIdentifier{Key: aws.String(p)}
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucketName(bucket)),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("%w: delete from %s: %w", common.ErrStorage, bucket, err)
	}
	if out != nil && len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("%w: delete %s/%s: %s", common.ErrStorage, bucket, aws.ToString(e.Key), aws.ToString(e.Message))
	}
	return nil
}

func (s *S3Storage) PublicURL(bucket Bucket, path string) string {
	return s.publicBaseURL + "/" + s.bucketName(bucket) + "/" + strings.TrimLeft(path, "/")
}
