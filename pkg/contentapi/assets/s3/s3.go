package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/content-api/pkg/contentapi"
)

// Config options for the S3 asset lookup
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	KeyPrefix       string // Prepended to asset ids to form object keys
	PublicBaseURL   string // When set, file URLs are public instead of presigned
	PresignDuration int    // Duration in seconds for presigned URLs (default: 3600)
}

// AssetLookup resolves asset ids to objects in an S3-compatible bucket
type AssetLookup struct {
	client          *s3.Client
	presignClient   *s3.PresignClient
	bucket          string
	presignDuration time.Duration
	config          Config
}

// New creates an S3-backed contentapi.AssetLookup
func New(ctx context.Context, config Config) (*AssetLookup, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	if config.PresignDuration == 0 {
		config.PresignDuration = 3600
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.Region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}
	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &AssetLookup{
		client:          client,
		presignClient:   s3.NewPresignClient(client),
		bucket:          config.Bucket,
		presignDuration: time.Duration(config.PresignDuration) * time.Second,
		config:          config,
	}, nil
}

// ObjectKey maps an asset id to its object key.
func (a *AssetLookup) ObjectKey(assetID string) string {
	return a.config.KeyPrefix + assetID
}

// Asset returns the asset record, or nil when the object does not exist.
func (a *AssetLookup) Asset(ctx context.Context, assetID string) (*contentapi.Asset, error) {
	key := a.ObjectKey(assetID)
	head, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("head asset %s: %w", assetID, err)
	}

	contentType := "application/octet-stream"
	if head.ContentType != nil {
		contentType = *head.ContentType
	}

	fileURL, err := a.fileURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &contentapi.Asset{ID: assetID, FileURL: fileURL, ContentType: contentType}, nil
}

func (a *AssetLookup) fileURL(ctx context.Context, key string) (string, error) {
	if a.config.PublicBaseURL != "" {
		return PublicURL(a.config.PublicBaseURL, key), nil
	}
	result, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(a.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("inline"),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = a.presignDuration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned asset URL: %w", err)
	}
	return result.URL, nil
}

// PublicURL joins a public base URL and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
