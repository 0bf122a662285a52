package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"axon/internal/config"
	"axon/internal/logging"
)

// downloader abstracts the S3 transfer manager for tests.
type downloader interface {
	Download(ctx context.Context, w *os.File, bucket, key string) (int64, error)
}

// Resolver turns a checkpoint reference into a local file path.
//
// Local paths pass through with an existence check. s3://bucket/key
// references are downloaded once into the cache directory and reused on
// subsequent runs.
type Resolver struct {
	cacheDir   string
	opts       config.Checkpoint
	logger     *slog.Logger
	downloader downloader
}

// NewResolver constructs a resolver caching downloads under cacheDir.
func NewResolver(cacheDir string, opts config.Checkpoint, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{cacheDir: cacheDir, opts: opts, logger: logger}
}

// Resolve returns a local path for the given checkpoint reference.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("checkpoint reference required")
	}

	if !strings.HasPrefix(ref, "s3://") {
		if _, err := os.Stat(ref); err != nil {
			return "", fmt.Errorf("checkpoint: %w", err)
		}
		return ref, nil
	}

	bucket, key, err := splitS3Ref(ref)
	if err != nil {
		return "", err
	}

	local := filepath.Join(r.cacheDir, path.Base(key))
	if _, err := os.Stat(local); err == nil {
		r.logger.Debug("checkpoint cached", logging.String("path", local))
		return local, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat cached checkpoint: %w", err)
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	dl := r.downloader
	if dl == nil {
		dl, err = r.newS3Downloader(ctx)
		if err != nil {
			return "", err
		}
	}

	// Download to a temp name so a partial fetch never looks cached.
	tmp, err := os.CreateTemp(r.cacheDir, path.Base(key)+".partial-*")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := dl.Download(ctx, tmp, bucket, key)
	if err != nil {
		return "", fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close download file: %w", err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", fmt.Errorf("move checkpoint into cache: %w", err)
	}

	r.logger.Info("checkpoint downloaded",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("bytes", size),
		logging.String("path", local))
	return local, nil
}

func splitS3Ref(ref string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(ref, "s3://")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 checkpoint reference %q", ref)
	}
	return bucket, key, nil
}

type s3Downloader struct {
	client *s3.Client
}

func (d *s3Downloader) Download(ctx context.Context, w *os.File, bucket, key string) (int64, error) {
	return manager.NewDownloader(d.client).Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
}

func (r *Resolver) newS3Downloader(ctx context.Context) (downloader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(r.opts.Region),
	}
	if r.opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(r.opts.AccessKey, r.opts.SecretKey, ""),
		))
	}
	if r.opts.Endpoint != "" {
		endpoint := r.opts.Endpoint
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: endpoint}, nil
				},
			),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = r.opts.PathStyle
	})
	return &s3Downloader{client: client}, nil
}
