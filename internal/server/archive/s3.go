package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"

	sc "github.com/dmitrijs2005/nutritracker/internal/server/config"
)

// objectPutter is the part of *s3.Client the archiver needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archiver puts snapshots into a single bucket.
type S3Archiver struct {
	client objectPutter
	bucket string
}

// NewS3Archiver builds an S3 client from static credentials. A non-empty
// S3BaseEndpoint targets an S3-compatible server such as MinIO.
func NewS3Archiver(ctx context.Context, c *sc.Config) (*S3Archiver, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: c.S3Bucket}, nil
}

// New returns an S3Archiver when a bucket is configured and a NopArchiver
// otherwise.
func New(ctx context.Context, c *sc.Config) (Archiver, error) {
	if !c.ArchiveEnabled() {
		return NopArchiver{}, nil
	}
	return NewS3Archiver(ctx, c)
}

func (a *S3Archiver) put(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (a *S3Archiver) ArchiveFood(ctx context.Context, food *models.FoodEntry) error {
	return a.put(ctx, FoodKey(food), newFoodSnapshot(food))
}

func (a *S3Archiver) ArchiveTracker(ctx context.Context, tracker *models.DailyTracker) error {
	return a.put(ctx, TrackerKey(tracker), newTrackerSnapshot(tracker))
}
