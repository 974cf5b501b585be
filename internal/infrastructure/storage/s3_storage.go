package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"jan-server/services/chat-api/internal/config"
	"jan-server/services/chat-api/utils/chatid"
)

var errStorageDisabled = errors.New("upload storage backend is not configured; set CHAT_S3_* to enable upload credentials")

var allowedMIMEs = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// UploadCredential is the short-lived signed-upload descriptor handed to
// clients so they can push an image directly to storage.
type UploadCredential struct {
	ID        string `json:"id"`
	UploadURL string `json:"upload_url"`
	MimeType  string `json:"mime_type"`
	ExpiresIn int    `json:"expires_in"`
}

// S3Storage issues presigned upload credentials against S3-compatible storage.
type S3Storage struct {
	bucket   string
	presign  *s3.PresignClient
	ttl      time.Duration
	log      zerolog.Logger
	disabled bool
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket: cfg.S3Bucket,
		ttl:    cfg.S3PresignTTL,
		log:    logger,
	}

	if storage.bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		logger.Warn().Msg("CHAT_S3_BUCKET or credentials are not set; upload credentials will be disabled until configured")
		storage.disabled = true
		return storage, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	storage.presign = s3.NewPresignClient(client)
	return storage, nil
}

// IssueUploadCredential reserves an object key and returns a presigned PUT
// descriptor for it. The upload itself happens between the client and the
// storage backend; this service never sees the bytes.
func (s *S3Storage) IssueUploadCredential(ctx context.Context, mimeType string) (*UploadCredential, error) {
	if s.disabled {
		return nil, errStorageDisabled
	}

	ext, ok := allowedMIMEs[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return nil, fmt.Errorf("unsupported mime type %s", mimeType)
	}

	id := chatid.New("upl")
	key := fmt.Sprintf("images/%s.%s", id, ext)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mimeType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &UploadCredential{
		ID:        id,
		UploadURL: req.URL,
		MimeType:  mimeType,
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}
