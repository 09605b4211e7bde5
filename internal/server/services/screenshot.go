package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	netURL "net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/config"
)

// ErrScreenshotsDisabled is returned when no upstream capture service is
// configured.
var ErrScreenshotsDisabled = errors.New("screenshot capture is not configured")

// test seams, replaced in tests to avoid real AWS and network calls
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ScreenshotService captures page screenshots through an upstream capture
// API, optionally caching the images in an S3-compatible bucket.
type ScreenshotService struct {
	config *config.Config
	http   *http.Client
	log    logging.Logger
	now    func() int64
}

// NewScreenshotService returns a ScreenshotService.
func NewScreenshotService(cfg *config.Config, log logging.Logger) *ScreenshotService {
	return &ScreenshotService{
		config: cfg,
		http:   &http.Client{Timeout: cfg.ScreenshotTimeout},
		log:    log,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *ScreenshotService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		}
	})

	return client, nil
}

func storageKey(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return "screenshots/" + hex.EncodeToString(sum[:])
}

// Capture returns a screenshot of pageURL, serving from the S3 cache when
// one is configured and already holds the image.
func (s *ScreenshotService) Capture(ctx context.Context, pageURL string) (*protocol.Screenshot, error) {
	if s.config.ScreenshotAPIURL == "" {
		return nil, ErrScreenshotsDisabled
	}

	u, err := netURL.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("url must be absolute http(s): %w", common.ErrValidation)
	}

	if s.config.S3Bucket != "" {
		if img, err := s.fromCache(ctx, pageURL); err == nil {
			return &protocol.Screenshot{URL: pageURL, ImageBase64: img, CapturedAt: s.now()}, nil
		}
	}

	img, err := s.captureUpstream(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if s.config.S3Bucket != "" {
		if err := s.toCache(ctx, pageURL, img); err != nil {
			s.log.Warn(ctx, "failed to cache screenshot", "url", pageURL, "error", err)
		}
	}

	return &protocol.Screenshot{URL: pageURL, ImageBase64: img, CapturedAt: s.now()}, nil
}

func (s *ScreenshotService) captureUpstream(ctx context.Context, pageURL string) (string, error) {
	captureURL := strings.TrimRight(s.config.ScreenshotAPIURL, "/") + "/" + netURL.QueryEscape(pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captureURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("capture request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("capture service returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (s *ScreenshotService) fromCache(ctx context.Context, pageURL string) (string, error) {
	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", err
	}

	key := storageKey(pageURL)
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *ScreenshotService) toCache(ctx context.Context, pageURL, imageBase64 string) error {
	client, err := s.getS3Client(ctx)
	if err != nil {
		return err
	}

	key := storageKey(pageURL)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(imageBase64),
	})
	return err
}
