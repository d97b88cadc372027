package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cmticaret/pkg/apierr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3Uploader is the slice of the S3 client the service uses.
type s3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const maxImageSize = 5 << 20 // 5 MiB

// MediaService stores product images in S3-compatible object storage and
// hands back the public URL to embed in the product document.
type MediaService struct {
	client    s3Uploader
	bucket    string
	prefix    string
	publicURL string
}

func NewMediaService(client s3Uploader, bucket, prefix, publicURL string) *MediaService {
	return &MediaService{
		client:    client,
		bucket:    bucket,
		prefix:    strings.TrimPrefix(prefix, "/"),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// UploadImage validates the content type and size, writes the object under
// a random key, and returns its public URL.
func (s *MediaService) UploadImage(ctx context.Context, body io.Reader, size int64, contentType string) (string, *apierr.Error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", apierr.BadRequest("Desteklenmeyen dosya türü")
	}
	if size <= 0 || size > maxImageSize {
		return "", apierr.BadRequest("Dosya boyutu 5 MB'ı aşamaz")
	}

	key := path.Join(s.prefix, uuid.NewString()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", apierr.Internal("Görsel yüklenemedi", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
