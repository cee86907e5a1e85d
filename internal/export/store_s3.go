package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures an S3-compatible bucket.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	Prefix          string
}

// S3Store keeps exports as objects in a bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store builds a client from static credentials.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}
	o := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		UsePathStyle: opts.PathStyle,
		// S3-compatible endpoints do not all accept aws-chunked checksum trailers.
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	if ep := strings.TrimSuffix(strings.TrimSpace(opts.Endpoint), "/"); ep != "" {
		if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
			ep = "https://" + ep
		}
		o.BaseEndpoint = aws.String(ep)
	}
	return &S3Store{
		client: s3.New(o),
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
	}, nil
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key + ".png"
	}
	return s.prefix + "/" + key + ".png"
}

func (s *S3Store) Put(ctx context.Context, filename string, data []byte) (string, error) {
	key := newKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(s.objectKey(key)),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
		Metadata:           map[string]string{"filename": filename},
	})
	if err != nil {
		return "", fmt.Errorf("s3 put export: %w", err)
	}
	return key, nil
}

func (s *S3Store) Get(ctx context.Context, key string) (*Artifact, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("s3 get export: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read export: %w", err)
	}
	filename := out.Metadata["filename"]
	if filename == "" {
		filename = key + ".png"
	}
	return &Artifact{Key: key, Filename: filename, Data: data}, nil
}
