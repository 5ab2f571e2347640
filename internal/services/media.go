package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gorm.io/gorm"

	appConfig "github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/config"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/logger"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/utils"
)

// AttachmentService resolves attachment IDs to descriptors and bridges to
// the external media store. Messages hold only the IDs; the rows here are
// the local half of the bookkeeping.
type AttachmentService interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (*models.Media, error)
	FindByIDs(ids []string) ([]models.Media, error)
	Delete(ctx context.Context, mediaID string) error
}

// ObjectStore is the raw binary storage behind the attachment service.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body multipart.File) error
	Remove(ctx context.Context, key string) error
}

// r2Store talks to an R2-compatible S3 bucket.
type r2Store struct {
	client *s3.Client
	bucket string
}

func newR2Store() (*r2Store, error) {
	cfg := appConfig.AppConfig
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(r2Resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return &r2Store{client: s3.NewFromConfig(awsCfg), bucket: cfg.R2BucketName}, nil
}

func (s *r2Store) Put(ctx context.Context, key, contentType string, body multipart.File) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *r2Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// MediaService is the production AttachmentService: uploads go to object
// storage, descriptors live in the media table.
type MediaService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewMediaService(db *gorm.DB) (*MediaService, error) {
	store, err := newR2Store()
	if err != nil {
		return nil, err
	}
	return &MediaService{db: db, store: store}, nil
}

// NewMediaServiceWithStore wires an explicit object store, used by tests.
func NewMediaServiceWithStore(db *gorm.DB, store ObjectStore) *MediaService {
	return &MediaService{db: db, store: store}
}

func (m *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (*models.Media, error) {
	ext := filepath.Ext(header.Filename)
	id := utils.NewID()
	key := fmt.Sprintf("%s/%s%s", folder, id, ext)
	contentType := header.Header.Get("Content-Type")

	if err := m.store.Put(ctx, key, contentType, file); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Attachment upload failed")
		return nil, apperrors.Upstream("Failed to upload attachment")
	}

	publicURL := appConfig.AppConfig.R2PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", appConfig.AppConfig.R2BucketName)
	}

	media := models.Media{
		ID:        id,
		URL:       fmt.Sprintf("%s/%s", publicURL, key),
		Key:       key,
		Mimetype:  contentType,
		Size:      header.Size,
		CreatedAt: time.Now(),
	}
	if err := m.db.Create(&media).Error; err != nil {
		return nil, apperrors.Internal("Failed to save attachment record")
	}

	return &media, nil
}

// FindByIDs resolves descriptors in one query. IDs with no matching row are
// dropped from the result, not reported as errors.
func (m *MediaService) FindByIDs(ids []string) ([]models.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var media []models.Media
	if err := m.db.Where("id IN ?", ids).Find(&media).Error; err != nil {
		return nil, apperrors.Internal("Failed to resolve attachments")
	}
	return media, nil
}

// Delete removes the stored object and its descriptor row. The row is kept
// if the storage delete fails so the reference can be retried.
func (m *MediaService) Delete(ctx context.Context, mediaID string) error {
	var media models.Media
	if err := m.db.First(&media, "id = ?", mediaID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Attachment not found")
		}
		return apperrors.Internal("Failed to look up attachment")
	}

	if err := m.store.Remove(ctx, media.Key); err != nil {
		logger.Error().Err(err).Str("mediaId", mediaID).Msg("Storage delete failed")
		return apperrors.Upstream("Failed to delete attachment from storage")
	}

	if err := m.db.Delete(&models.Media{}, "id = ?", mediaID).Error; err != nil {
		return apperrors.Internal("Failed to delete attachment record")
	}
	return nil
}
