package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

// Seams over the AWS SDK, swapped out in tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// EntryLister is the slice of EntryService the exporter needs.
type EntryLister interface {
	List(ctx context.Context, userID string) ([]*models.Entry, error)
}

// ExportDocument is the JSON written to object storage.
type ExportDocument struct {
	UserID     string        `json:"user_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []ExportEntry `json:"entries"`
}

type ExportEntry struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Tags      []string        `json:"tags"`
	AIInsight *models.Insight `json:"ai_insight,omitempty"`
}

// ExportService snapshots a user's journal to S3-compatible storage and
// hands back a time-limited download link.
type ExportService struct {
	entries EntryLister
	config  *sc.Config
	now     func() time.Time
}

func NewExportService(entries EntryLister, config *sc.Config) *ExportService {
	return &ExportService{entries: entries, config: config, now: time.Now}
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// ExportKey is the object key for an export of userID taken at t.
func ExportKey(userID string, t time.Time) string {
	return fmt.Sprintf("exports/%s/%s.json", userID, t.UTC().Format("20060102T150405Z"))
}

// Export uploads userID's entries as one JSON document and returns its key
// and a presigned GET URL.
func (s *ExportService) Export(ctx context.Context, userID string) (string, string, error) {
	entries, err := s.entries.List(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("error listing entries: %w", err)
	}

	now := s.now()
	doc := ExportDocument{UserID: userID, ExportedAt: now.UTC(), Entries: make([]ExportEntry, 0, len(entries))}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, ExportEntry{
			ID: e.ID, Title: e.Title, Content: e.Content,
			CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
			Tags: e.Tags, AIInsight: e.AIInsight,
		})
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("error encoding export: %w", err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("error creating s3 client: %w", err)
	}

	key := ExportKey(userID, now)
	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", "", fmt.Errorf("error uploading export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.config.ExportURLValidityDuration))
	if err != nil {
		return "", "", fmt.Errorf("error presigning export: %w", err)
	}
	return key, req.URL, nil
}
