package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/Alexis-Lijeron/redes/configs"
	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
)

// MediaService keeps user media in Cloudflare R2 and hands back public
// URLs. It doubles as the stager the Instagram adapter uses when a local
// file needs a public URL before publishing.
type MediaService interface {
	SaveUpload(ctx context.Context, userID int64, fileName string, file []byte) (*models.MediaAsset, error)
	ListAssets(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	StageLocalFile(ctx context.Context, path string) (string, error)
}

type mediaService struct {
	cfg config.Config
	ma  repository.MediaAssetRepository
}

func NewMediaService(cfg config.Config, ma repository.MediaAssetRepository) MediaService {
	return &mediaService{
		cfg: cfg,
		ma:  ma,
	}
}

var allowedMediaTypes = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "mp4": {}, "mov": {},
}

func (s *mediaService) SaveUpload(ctx context.Context, userID int64, fileName string, file []byte) (*models.MediaAsset, error) {
	kind, err := filetype.Match(file)
	if err != nil || kind == types.Unknown {
		err = errors.New("unsupported file type")
		slog.Info(err.Error())
		return nil, err
	}
	if _, ok := allowedMediaTypes[kind.Extension]; !ok {
		err = fmt.Errorf("file type %s is not allowed", kind.Extension)
		slog.Info(err.Error())
		return nil, err
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.uploadToR2(ctx, key, file, kind.MIME.Value); err != nil {
		return nil, err
	}

	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: fileName,
		FileType: kind.MIME.Value,
		FileSize: int64(len(file)),
		FileURL:  fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key),
	}

	assetID, err := s.ma.Create(ctx, asset)
	if err != nil {
		return nil, err
	}
	asset.ID = assetID

	return asset, nil
}

func (s *mediaService) ListAssets(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	assets, err := s.ma.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing media assets: %w", err)
	}
	return assets, nil
}

// StageLocalFile pushes a file already on disk into R2 and returns its
// public URL. No media_assets row is written: staged files are publish
// plumbing, not user uploads.
func (s *mediaService) StageLocalFile(ctx context.Context, path string) (string, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	mimeType := "application/octet-stream"
	if kind, err := filetype.Match(file); err == nil && kind != types.Unknown {
		mimeType = kind.MIME.Value
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if err := s.uploadToR2(ctx, key, file, mimeType); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key), nil
}

func (s *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.cfg.R2.AccessKey, s.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.cfg.R2.AccountID))
	}), nil
}

func (s *mediaService) uploadToR2(ctx context.Context, key string, file []byte, mimeType string) error {
	client, err := s.r2Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(mimeType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
