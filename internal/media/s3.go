package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/config"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/model"
)

var tracer = otel.Tracer("internal/media")

var _ Store = (*S3Store)(nil)

// S3Store keeps images in an S3 compatible bucket. The object key is the asset id.
type S3Store struct {
	client    *s3.Client
	bucket    string
	baseURL   string
	keyPrefix string
}

// NewS3Store creates a store from cfg. Static credentials are used when set,
// otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.Media) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		baseURL:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, file File) (model.Image, error) {
	ctx, span := tracer.Start(ctx, "S3Store.Upload", trace.WithAttributes(
		attribute.String("filename", file.Filename),
	))
	defer span.End()

	key, err := s.objectKey(file.Filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build object key")
		return model.Image{}, err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file.Content,
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to put object")
		return model.Image{}, fmt.Errorf("put object %s: %w", key, err)
	}

	span.SetStatus(codes.Ok, "")
	return model.Image{
		URL:     s.baseURL + "/" + key,
		AssetID: key,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, assetID string) error {
	ctx, span := tracer.Start(ctx, "S3Store.Delete", trace.WithAttributes(
		attribute.String("asset_id", assetID),
	))
	defer span.End()

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete object")
		return fmt.Errorf("delete object %s: %w", assetID, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *S3Store) objectKey(filename string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}

	name := id.String() + strings.ToLower(path.Ext(filename))
	if s.keyPrefix == "" {
		return name, nil
	}
	return s.keyPrefix + "/" + name, nil
}
