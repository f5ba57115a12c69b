package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 5 * time.Minute

// AvatarService handles avatar uploads via pre-signed S3 URLs
type AvatarService struct {
	users    UserStore
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewAvatarService creates a new avatar service
func NewAvatarService(users UserStore, region, bucket, accessKey, secretKey, endpoint string) (*AvatarService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &AvatarService{
		users:    users,
		s3Client: s3Client,
		bucket:   bucket,
		region:   region,
	}, nil
}

// AvatarUploadResponse carries the pre-signed URL and the final avatar URL
type AvatarUploadResponse struct {
	UploadURL string `json:"upload_url"`
	AvatarURL string `json:"avatar_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignUpload generates a pre-signed PUT URL for a user's avatar and
// stores the resulting avatar reference on the user record
func (s *AvatarService) PresignUpload(ctx context.Context, userID, contentType string) (*AvatarUploadResponse, error) {
	key := fmt.Sprintf("avatars/%s/%s.jpg", userID, uuid.New().String())

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	avatarURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	if err := s.users.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		return nil, fmt.Errorf("failed to store avatar reference: %w", err)
	}

	return &AvatarUploadResponse{
		UploadURL: request.URL,
		AvatarURL: avatarURL,
		ExpiresIn: int(presignExpiry.Seconds()),
	}, nil
}
