// Package s3 provides an S3-compatible implementation of the ArchiveStore interface.
//
// The store works with AWS S3 as well as S3-compatible services such as
// MinIO (set Endpoint and UsePathStyle).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tendant/simple-scene/pkg/simplescene"
)

// Store implements the ArchiveStore interface using S3-compatible storage
type Store struct {
	client *s3.Client
	config Config
}

// Config holds configuration for the S3 store
type Config struct {
	Region                 string
	Bucket                 string
	AccessKeyID            string
	SecretAccessKey        string
	SessionToken           string
	Endpoint               string
	UsePathStyle           bool
	EnableSSE              bool
	SSEAlgorithm           string
	SSEKMSKeyID            string
	CreateBucketIfNotExist bool
}

// New creates a new S3-backed archive store
func New(config Config) (simplescene.ArchiveStore, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	// Build AWS config options
	var opts []func(*awsconfig.LoadOptions) error

	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, config.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Build S3 client options
	var s3Opts []func(*s3.Options)

	if config.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}

	if config.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	store := &Store{
		client: client,
		config: config,
	}

	if config.CreateBucketIfNotExist {
		if err := store.createBucketIfNotExists(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return store, nil
}

// createBucketIfNotExists checks whether the configured bucket exists and
// creates it if it does not. Useful for local development with MinIO.
func (s *Store) createBucketIfNotExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.Bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) && !hasErrorCode(err, "NotFound", "404") {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.config.Bucket),
	})
	if err != nil {
		// Another client may have created the bucket in the meantime
		if hasErrorCode(err, "BucketAlreadyOwnedByYou", "BucketAlreadyExists") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// hasErrorCode reports whether err carries one of the given S3 API error codes.
func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}

// Save uploads the archive under the given key
func (s *Store) Save(ctx context.Context, key string, r io.Reader) error {
	uploader := manager.NewUploader(s.client)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String("application/json"),
	}

	if s.config.EnableSSE {
		switch s.config.SSEAlgorithm {
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if s.config.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(s.config.SSEKMSKeyID)
			}
		default:
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		}
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	return nil
}

// Open returns a reader for the archive stored under key
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) || hasErrorCode(err, "NoSuchKey") {
			return nil, simplescene.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to download archive: %w", err)
	}

	return result.Body, nil
}

// Delete removes the archive stored under key.
// S3 treats deletion of a missing key as success, so no not-found error
// is reported here.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}

	return nil
}

// Stat retrieves object metadata for the archive stored under key
func (s *Store) Stat(ctx context.Context, key string) (*simplescene.ArchiveInfo, error) {
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) || hasErrorCode(err, "NotFound", "404") {
			return nil, simplescene.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to get archive metadata: %w", err)
	}

	return &simplescene.ArchiveInfo{
		Key:       key,
		Size:      aws.ToInt64(result.ContentLength),
		UpdatedAt: aws.ToTime(result.LastModified).UTC(),
		ETag:      strings.Trim(aws.ToString(result.ETag), `"`),
	}, nil
}

// List returns the keys under the given prefix.
// Keys are returned in the lexicographic order S3 lists them in.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.config.Bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list archives: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	return keys, nil
}
