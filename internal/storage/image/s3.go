package image

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"go-gin-marketplace/internal/domain"
	"go-gin-marketplace/pkg/utils"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	Prefix        string
	PublicBaseURL string
	PathStyle     bool
	AccessKey     string // 为空走默认凭证链
	SecretKey     string
}

// S3 图片存对象存储，记录里只保留公开 URL
type S3 struct {
	client  putObjectAPI
	bucket  string
	prefix  string
	baseURL string
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.Region))
	}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.PathStyle
	})
	return NewS3WithClient(client, o), nil
}

func NewS3WithClient(client putObjectAPI, o S3Options) *S3 {
	base := strings.TrimRight(o.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
	}
	return &S3{client: client, bucket: o.Bucket, prefix: strings.Trim(o.Prefix, "/"), baseURL: base}
}

func (s *S3) Put(ctx context.Context, data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	mime = DetectMIME(mime, data)
	key := path.Join(s.prefix, utils.NewID()+extensionFor(mime))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %v", domain.ErrUnavailable, key, err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3) Resolve(_ context.Context, ref string) (*Resolved, error) {
	return resolveAny(ref)
}
