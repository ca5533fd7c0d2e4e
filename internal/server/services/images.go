package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/srefhub/internal/common"
	sc "github.com/dmitrijs2005/srefhub/internal/server/config"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Seams for tests; production code goes straight to the SDK.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageUpload is a recorded preview slot plus the URL to PUT the bytes to.
type ImageUpload struct {
	Image *models.CodeImage
	URL   string
}

// ImageService hands out presigned S3 URLs for code preview images. The
// bytes never pass through the server.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ImageService {
	return &ImageService{db: db, repomanager: m, config: cfg}
}

func StorageKeyForCode(codeID string) string {
	return fmt.Sprintf("codes/%s/%v", codeID, uuid.New())
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignImageUpload is only allowed for the code's owner. The image row is
// written after the URL is signed, so a signing failure leaves no trace.
func (s *ImageService) PresignImageUpload(ctx context.Context, userID, codeID, contentType string) (*ImageUpload, error) {
	owner, err := s.repomanager.Codes(s.db).Owner(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, common.ErrorForbidden
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	key := StorageKeyForCode(codeID)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	im, err := s.repomanager.Images(s.db).Append(ctx, codeID, key)
	if err != nil {
		return nil, err
	}
	return &ImageUpload{Image: im, URL: req.URL}, nil
}

// ImageURLs returns presigned GET URLs in image position order.
func (s *ImageService) ImageURLs(ctx context.Context, images []models.CodeImage) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	urls := make([]string, 0, len(images))
	for _, im := range images {
		req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.config.S3Bucket),
			Key:    aws.String(im.StorageKey),
		}, s3.WithPresignExpires(s.config.PresignExpiry))
		if err != nil {
			return nil, fmt.Errorf("error presigning download: %w", err)
		}
		urls = append(urls, req.URL)
	}
	return urls, nil
}
