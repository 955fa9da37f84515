package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Options bucket y credenciales. Endpoint vacío = AWS; con MinIO o similares usar UsePathStyle.
type S3Options struct {
	Endpoint     string
	Region       string
	Bucket       string
	Key          string // vacío = backups/agro-berry-data.json
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// S3 guarda el documento como un objeto.
type S3 struct {
	client *s3.Client
	bucket string
	key    string
	now    func() time.Time
}

// NewS3 construye el cliente; ErrRemoteNotConfigured si falta bucket o credenciales.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, ErrRemoteNotConfigured
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	key := opts.Key
	if key == "" {
		key = defaultBackupPath
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("configuración AWS: %w", err)
	}

	endpoint := opts.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &S3{client: client, bucket: opts.Bucket, key: key, now: time.Now}, nil
}

func (s *S3) Name() string { return "s3" }

// Push sube el documento reemplazando el objeto.
func (s *S3) Push(ctx context.Context, payload []byte) (*Receipt, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, s3Error("subir respaldo", err)
	}
	return &Receipt{
		Provider: s.Name(),
		Location: "s3://" + s.bucket + "/" + s.key,
		Version:  strings.Trim(aws.ToString(out.ETag), `"`),
		At:       s.now().UTC(),
	}, nil
}

// Pull descarga el objeto.
func (s *S3) Pull(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, s3Error("descargar respaldo", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: leer respaldo: %w", ErrRemoteUnavailable, err)
	}
	return data, nil
}

// Check valida credenciales y bucket.
func (s *S3) Check(ctx context.Context) (*Info, error) {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return nil, s3Error("verificar bucket", err)
	}
	return &Info{Provider: s.Name(), Name: s.bucket, Private: true}, nil
}

// Last fecha de modificación del objeto; nil, nil si no existe.
func (s *S3) Last(ctx context.Context) (*LastBackup, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		err = s3Error("consultar respaldo", err)
		if errors.Is(err, ErrRemoteNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &LastBackup{At: aws.ToTime(out.LastModified), Message: aws.ToString(out.ETag)}, nil
}

// s3Error traduce los errores del SDK a la taxonomía de destinos remotos.
func s3Error(op string, err error) error {
	var (
		noSuchKey    *types.NoSuchKey
		noSuchBucket *types.NoSuchBucket
		notFound     *types.NotFound
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: s3 %s: %w", ErrRemoteNotFound, op, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "Forbidden":
			return fmt.Errorf("%w: s3 %s: %w", ErrRemoteAuth, op, err)
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: s3 %s: %w", ErrRemoteNotFound, op, err)
		case "OperationAborted", "ConditionalRequestConflict", "PreconditionFailed":
			return fmt.Errorf("%w: s3 %s: %w", ErrRemoteConflict, op, err)
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: s3 %s: %w", ErrRemoteAuth, op, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: s3 %s: %w", ErrRemoteNotFound, op, err)
		case http.StatusConflict, http.StatusPreconditionFailed:
			return fmt.Errorf("%w: s3 %s: %w", ErrRemoteConflict, op, err)
		}
	}
	return fmt.Errorf("%w: s3 %s: %w", ErrRemoteUnavailable, op, err)
}
