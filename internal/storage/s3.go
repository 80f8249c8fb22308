package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog/log"
)

// S3Store implements Store on Amazon S3 through the AWS SDK.
type S3Store struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	region   string
}

// NewS3Store creates an S3 client. Recognised connection string keys:
// Region (required), Endpoint, AccessKeyId, SecretAccessKey, SessionToken
// and ForcePathStyle. Without keys the default AWS credential chain is used.
func NewS3Store(connectionString string) (*S3Store, error) {
	params, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	region, err := params.Require("Region")
	if err != nil {
		return nil, err
	}
	pathStyle, err := params.Bool("ForcePathStyle", false)
	if err != nil {
		return nil, err
	}

	cfg := aws.NewConfig().WithRegion(region).WithS3ForcePathStyle(pathStyle)
	if endpoint := params.Get("Endpoint"); endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	if id := params.Get("AccessKeyId"); id != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(id, params.Get("SecretAccessKey"), params.Get("SessionToken")))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("s3: create session: %w", err)
	}
	client := s3.New(sess)

	return &S3Store{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		region:   region,
	}, nil
}

// Exists issues a HEAD for the key.
func (s *S3Store) Exists(ctx context.Context, bucket, path string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3: head object: %w", err)
	}
	return true, nil
}

// Get reads the whole object.
func (s *S3Store) Get(ctx context.Context, bucket, path string) ([]byte, error) {
	obj, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("s3: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("s3: get object: %w", err)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read object: %w", err)
	}
	return body, nil
}

// Put uploads content, creating the bucket when it is missing.
func (s *S3Store) Put(ctx context.Context, bucket, path string, content []byte, contentType string) error {
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return err
	}

	input := &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("s3: upload object: %w", err)
	}
	return nil
}

// Delete removes the key. S3 deletes are idempotent, so a HEAD runs first
// to report ErrNotFound.
func (s *S3Store) Delete(ctx context.Context, bucket, path string) error {
	exists, err := s.Exists(ctx, bucket, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("s3: %s: %w", path, ErrNotFound)
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("s3: delete object: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *S3Store) Close() error { return nil }

func (s *S3Store) ensureBucket(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	if !isS3NotFound(err) {
		return fmt.Errorf("s3: head bucket: %w", err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(s.region),
		}
	}
	if _, err := s.client.CreateBucketWithContext(ctx, input); err != nil {
		return fmt.Errorf("s3: create bucket: %w", err)
	}
	log.Info().Str("bucket", bucket).Msg("created bucket")
	return nil
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return true
		}
	}
	return false
}
