// Package s3store reads and writes whole objects in S3-compatible storage.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// defaultRegion is used when none is configured. Most S3-compatible
// services ignore the region but the SDK requires one for signing.
const defaultRegion = "us-east-1"

// Sentinel errors for S3 operations.
var (
	ErrMissingCredential = errors.New("missing S3 setting")
	ErrInvalidLocation   = errors.New("invalid S3 location")
	ErrObjectNotFound    = errors.New("S3 object not found")
)

// Settings holds connection parameters. Each field is resolved from a CLI
// flag or its environment variable before reaching this package.
type Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	Endpoint        string
}

// Validate reports the first missing required setting, naming the flag and
// environment variable that provide it.
func (s Settings) Validate() error {
	required := []struct {
		value, flag, env string
	}{
		{s.AccessKeyID, "--s3-access-key-id", "S3_ACCESS_KEY_ID"},
		{s.SecretAccessKey, "--s3-secret-access-key", "S3_SECRET_ACCESS_KEY"},
		{s.Endpoint, "--s3-endpoint", "S3_ENDPOINT"},
		{s.Bucket, "--s3-bucket", "S3_BUCKET"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: provide %s or set %s", ErrMissingCredential, r.flag, r.env)
		}
	}
	return nil
}

// Location is a parsed s3://bucket/key reference.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseLocation parses an s3:// URL. An empty host falls back to
// defaultBucket, so "s3:///reports/a.pdf" targets the configured bucket.
func ParseLocation(raw, defaultBucket string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("%w: scheme %q is not s3", ErrInvalidLocation, u.Scheme)
	}

	bucket := u.Host
	if bucket == "" {
		bucket = defaultBucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%w: %q has no bucket", ErrInvalidLocation, raw)
	}
	if key == "" {
		return Location{}, fmt.Errorf("%w: %q has no object key", ErrInvalidLocation, raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store performs whole-object operations against one S3 endpoint.
type Store struct {
	api           objectAPI
	defaultBucket string
}

// New validates settings and builds a path-style client for the endpoint.
func New(ctx context.Context, s Settings) (*Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	region := s.Region
	if region == "" {
		region = defaultRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.Endpoint)
		o.UsePathStyle = true
	})
	return &Store{api: client, defaultBucket: s.Bucket}, nil
}

// DefaultBucket returns the bucket used for s3:// URLs without a host.
func (st *Store) DefaultBucket() string { return st.defaultBucket }

// Get downloads the whole object.
func (st *Store) Get(ctx context.Context, loc Location) ([]byte, error) {
	out, err := st.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, loc)
		}
		return nil, fmt.Errorf("getting %s: %w", loc, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc, err)
	}
	return data, nil
}

// Put uploads data, replacing any existing object.
func (st *Store) Put(ctx context.Context, loc Location, data []byte, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := st.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("putting %s: %w", loc, err)
	}
	return nil
}

// Exists reports whether the object is present.
func (st *Store) Exists(ctx context.Context, loc Location) (bool, error) {
	_, err := st.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", loc, err)
	}
	return true, nil
}

// Delete removes the object. Deleting a missing object succeeds, as S3 does.
func (st *Store) Delete(ctx context.Context, loc Location) error {
	_, err := st.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", loc, err)
	}
	return nil
}

// isNotFound matches both typed and HEAD-style (body-less) 404 errors.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}
	return false
}
