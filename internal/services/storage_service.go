// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/config"
)

// MaxImagesPerUpload caps the number of files accepted in one request.
const MaxImagesPerUpload = 10

type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Files are kept on local disk when S3 is not configured
		return &StorageService{config: config}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// ProductImageOptions returns the upload limits for catalog pictures.
func (s *StorageService) ProductImageOptions() UploadOptions {
	maxSize := s.config.Storage.MaxImageSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024 // 10MB
	}
	return UploadOptions{
		Folder:       "products",
		MaxSize:      maxSize,
		AllowedTypes: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		IsPublic:     true,
	}
}

// UploadProductImages stores every file and returns their public URLs in
// request order. Nothing is stored unless every file passes validation.
func (s *StorageService) UploadProductImages(ctx context.Context, accountID uuid.UUID, files []*multipart.FileHeader) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, invalid("at least one image is required")
	}
	if len(files) > MaxImagesPerUpload {
		return nil, invalid("at most %d images can be uploaded at once", MaxImagesPerUpload)
	}

	options := s.ProductImageOptions()
	options.Folder = fmt.Sprintf("%s/%s", options.Folder, accountID)

	type pendingFile struct {
		name        string
		data        []byte
		contentType string
	}
	pending := make([]pendingFile, 0, len(files))
	for _, header := range files {
		data, err := s.readAndValidate(header, options)
		if err != nil {
			return nil, err
		}
		pending = append(pending, pendingFile{
			name:        header.Filename,
			data:        data,
			contentType: http.DetectContentType(data),
		})
	}

	results := make([]UploadResult, 0, len(pending))
	for _, file := range pending {
		result, err := s.upload(ctx, file.data, s.generateFileName(file.name, options.Folder), file.contentType, options.IsPublic)
		if err != nil {
			s.discard(results)
			return nil, err
		}
		results = append(results, *result)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"files":      len(results),
	}).Info("Product images uploaded")

	return results, nil
}

func (s *StorageService) readAndValidate(header *multipart.FileHeader, options UploadOptions) ([]byte, error) {
	// Validate file size
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, invalid("file %s is %d bytes, maximum is %d bytes", header.Filename, header.Size, options.MaxSize)
	}

	// Validate file type
	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, invalid("file type %q is not allowed", fileExt)
		}
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if !isValidImageType(fileBytes) {
		return nil, invalid("file %s is not a supported image", header.Filename)
	}

	return fileBytes, nil
}

func (s *StorageService) upload(ctx context.Context, fileBytes []byte, key, contentType string, isPublic bool) (*UploadResult, error) {
	// Upload to S3 or local storage
	if s.s3Client != nil {
		return s.uploadToS3(ctx, fileBytes, key, contentType, isPublic)
	}
	return s.uploadToLocal(fileBytes, key, contentType)
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string, isPublic bool) (*UploadResult, error) {
	// Prepare S3 upload parameters
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	}

	if isPublic {
		params.ACL = aws.String("public-read")
	}

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout())
	defer cancel()

	// Upload to S3
	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.config.Storage.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	baseURL := strings.TrimRight(s.config.Storage.PublicBaseURL, "/")
	return &UploadResult{
		URL:      fmt.Sprintf("%s/uploads/%s", baseURL, key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if s.s3Client == nil {
		path := filepath.Join(s.config.Storage.LocalDir, filepath.FromSlash(key))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout())
	defer cancel()

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// discard removes files stored by a batch that failed part way.
func (s *StorageService) discard(results []UploadResult) {
	ctx, cancel := context.WithTimeout(context.Background(), s.uploadTimeout())
	defer cancel()

	for _, result := range results {
		if err := s.DeleteFile(ctx, result.Key); err != nil {
			logrus.WithError(err).WithField("key", result.Key).Warn("Failed to discard uploaded image")
		}
	}
}

// LocalDir is where uploads are kept when S3 is not configured; empty when
// S3 is in use.
func (s *StorageService) LocalDir() string {
	if s.s3Client != nil {
		return ""
	}
	return s.config.Storage.LocalDir
}

func (s *StorageService) uploadTimeout() time.Duration {
	if s.config.AWS.UploadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.config.AWS.UploadTimeout) * time.Second
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	// Generate UUID for uniqueness
	id := uuid.New()

	// Get file extension
	ext := strings.ToLower(filepath.Ext(originalName))

	// Create filename with timestamp and UUID
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String()[:8], ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}

	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}

	// PNG
	if len(buffer) >= 8 && buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47 {
		return true
	}

	// GIF
	if len(buffer) >= 6 && (string(buffer[0:6]) == "GIF87a" || string(buffer[0:6]) == "GIF89a") {
		return true
	}

	// WebP
	if len(buffer) >= 12 && string(buffer[0:4]) == "RIFF" && string(buffer[8:12]) == "WEBP" {
		return true
	}

	return false
}
