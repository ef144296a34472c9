package backupstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/infrastructure/document"
	"github.com/riskibarqy/elo-championship/internal/platform/resilience"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Breaker         resilience.BreakerConfig
}

// S3 stores backups in an S3-compatible bucket. Calls go through a circuit
// breaker so an unreachable bucket fails fast.
type S3 struct {
	client  s3API
	bucket  string
	prefix  string
	breaker *resilience.Breaker
}

func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3(client, opts), nil
}

func newS3(client s3API, opts S3Options) *S3 {
	return &S3{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		breaker: resilience.NewBreaker(opts.Breaker),
	}
}

func (s *S3) Save(ctx context.Context, name string, snapshot backup.Snapshot) (backup.Backup, error) {
	if err := backup.ValidateName(name); err != nil {
		return backup.Backup{}, err
	}
	payload, err := document.Encode(snapshot)
	if err != nil {
		return backup.Backup{}, err
	}

	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.key(name)),
			Body:        bytes.NewReader(payload),
			ContentType: aws.String("application/json"),
		})
		return err
	})
	if err != nil {
		return backup.Backup{}, fmt.Errorf("upload backup %s: %w", name, err)
	}

	createdAt, _ := backup.TimeFromName(name)
	return backup.Backup{
		Name:      name,
		CreatedAt: createdAt,
		SizeBytes: int64(len(payload)),
		Matches:   len(snapshot.Records),
	}, nil
}

func (s *S3) List(ctx context.Context) ([]backup.Backup, error) {
	out := make([]backup.Backup, 0)
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(s.key("")),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, obj := range page.Contents {
				name := path.Base(aws.ToString(obj.Key))
				if backup.ValidateName(name) != nil {
					continue
				}
				createdAt, ok := backup.TimeFromName(name)
				if !ok && obj.LastModified != nil {
					createdAt = obj.LastModified.UTC()
				}
				out = append(out, backup.Backup{
					Name:      name,
					CreatedAt: createdAt,
					SizeBytes: aws.ToInt64(obj.Size),
					Matches:   -1,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (s *S3) Load(ctx context.Context, name string) (backup.Snapshot, error) {
	if err := backup.ValidateName(name); err != nil {
		return backup.Snapshot{}, err
	}

	var payload []byte
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
		})
		if err != nil {
			var missing *types.NoSuchKey
			if errors.As(err, &missing) {
				// a missing object says nothing about bucket health
				return nil
			}
			return err
		}
		defer obj.Body.Close()
		payload, err = io.ReadAll(obj.Body)
		return err
	})
	if err != nil {
		return backup.Snapshot{}, fmt.Errorf("download backup %s: %w", name, err)
	}
	if payload == nil {
		return backup.Snapshot{}, fmt.Errorf("%w: %s", backup.ErrNotFound, name)
	}
	return document.Decode(payload)
}

func (s *S3) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}
