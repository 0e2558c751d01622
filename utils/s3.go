package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Media storage for task-update photos and documents. Any S3-compatible
// endpoint works (AWS S3, Cloudflare R2, MinIO); config comes from
// MEDIA_S3_ENDPOINT, MEDIA_S3_ACCESS_KEY_ID, MEDIA_S3_SECRET_ACCESS_KEY and
// MEDIA_S3_BUCKET.

func getMediaConfig() (aws.Config, error) {
	accessKey := os.Getenv("MEDIA_S3_ACCESS_KEY_ID")
	secretKey := os.Getenv("MEDIA_S3_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return aws.Config{}, fmt.Errorf("MEDIA_S3_ACCESS_KEY_ID or MEDIA_S3_SECRET_ACCESS_KEY is not set")
	}

	region := os.Getenv("MEDIA_S3_REGION")
	if region == "" {
		region = "auto"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load media storage config: %w", err)
	}
	return cfg, nil
}

func getMediaClient() (*s3.Client, error) {
	cfg, err := getMediaConfig()
	if err != nil {
		return nil, err
	}
	endpoint := os.Getenv("MEDIA_S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = os.Getenv("MEDIA_S3_PATH_STYLE") == "true"
	})
	return client, nil
}

func getMediaBucket() (string, error) {
	bucket := os.Getenv("MEDIA_S3_BUCKET")
	if bucket == "" {
		return "", fmt.Errorf("MEDIA_S3_BUCKET is not set")
	}
	return bucket, nil
}

// NewMediaObjectKey builds a collision-free object key for an uploaded file,
// keyed by the submitting user.
func NewMediaObjectKey(userID uint, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("updates/%d/%s%s", userID, uuid.New().String(), ext)
}

// UploadMedia streams a file to the media bucket and returns the object key.
func UploadMedia(ctx context.Context, objectKey string, file io.Reader, fileSize int64) (string, error) {
	bucket, err := getMediaBucket()
	if err != nil {
		return "", err
	}
	client, err := getMediaClient()
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(path.Ext(objectKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(objectKey),
		Body:          file,
		ContentLength: aws.Int64(fileSize),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media object: %w", err)
	}
	return objectKey, nil
}

// MediaURL returns the public URL for an object key, using MEDIA_PUBLIC_URL
// as base when set.
func MediaURL(objectKey string) string {
	base := os.Getenv("MEDIA_PUBLIC_URL")
	if base == "" {
		return objectKey
	}
	return fmt.Sprintf("%s/%s", base, objectKey)
}
