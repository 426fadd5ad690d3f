// Package storage guarda los PDF de facturas en S3 o un servicio compatible (MinIO, R2, Supabase).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/pos-restaurante-api/internal/application/invoice"
	"github.com/jhoicas/pos-restaurante-api/pkg/config"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

var _ invoice.Storage = (*S3Storage)(nil)

// objectAPI parte del cliente S3 que usa el adaptador.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage adaptador de invoice.Storage sobre aws-sdk-go-v2.
type S3Storage struct {
	client  objectAPI
	presign func(ctx context.Context, key string, ttl time.Duration) (string, error)
	bucket  string
	ttl     time.Duration
	log     *logger.Logger
}

// NewS3Storage construye el cliente. Sin llaves usa la cadena de credenciales por defecto (rol IAM, env).
func NewS3Storage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket requerido")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración aws: %w", err)
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	presigner := s3.NewPresignClient(client)
	s := &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		ttl:    cfg.PresignTTL(),
		log:    log.Component("storage"),
	}
	s.presign = func(ctx context.Context, key string, ttl time.Duration) (string, error) {
		req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}
	return s, nil
}

// Upload sube el objeto reemplazando el anterior con la misma llave.
func (s *S3Storage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return errors.New("storage: key requerida")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("subida a S3 falló")
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int("bytes", len(body)).Msg("objeto subido")
	return nil
}

// PresignGet URL temporal de lectura.
func (s *S3Storage) PresignGet(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage: key requerida")
	}
	url, err := s.presign(ctx, key, s.ttl)
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return url, nil
}
