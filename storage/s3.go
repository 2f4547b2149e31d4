package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"football-dwh/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// NewS3Client erstellt einen S3-Client für den Archiv-Endpoint.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.ArchiveS3URL,
				SigningRegion:     cfg.ArchiveS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.ArchiveS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.ArchiveS3Key, cfg.ArchiveS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// Archiver legt rohe Provider-Antworten gzip-komprimiert im S3-Bucket
// ab, damit jeder Lauf nachträglich gegen die Originaldaten geprüft
// werden kann. Archivfehler dürfen einen Lauf nie aufhalten, sie
// werden nur geloggt.
type Archiver struct {
	Client *s3.Client
	Bucket string
	Logger *zap.Logger
}

func NewArchiver(client *s3.Client, bucket string, logger *zap.Logger) *Archiver {
	return &Archiver{Client: client, Bucket: bucket, Logger: logger}
}

// ArchiveResponse schreibt eine Antwort unter einem Schlüssel aus
// Abrufdatum und URL-Hash, z.B. "raw/2025-08-31/1a2b3c....json.gz".
func (a *Archiver) ArchiveResponse(url string, body []byte) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(body); err != nil {
		a.Logger.Warn("antwort nicht komprimierbar", zap.String("url", url), zap.Error(err))
		return
	}
	if err := gz.Close(); err != nil {
		a.Logger.Warn("antwort nicht komprimierbar", zap.String("url", url), zap.Error(err))
		return
	}

	key := fmt.Sprintf("raw/%s/%x.json.gz", time.Now().UTC().Format("2006-01-02"), sha1.Sum([]byte(url)))
	_, err := a.Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: &a.Bucket,
		Key:    &key,
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		a.Logger.Warn("antwort nicht archivierbar", zap.String("url", url), zap.Error(err))
		return
	}
	a.Logger.Debug("antwort archiviert", zap.String("url", url), zap.String("key", key))
}
