package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// SpacesFetcher downloads legacy dump files from a Spaces/S3 bucket so the
// importer can run against off-host backups instead of a local directory.
type SpacesFetcher struct {
	client *s3.Client
	bucket string
}

func NewSpacesFetcher(key, secret, region, bucket string) (*SpacesFetcher, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &SpacesFetcher{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// FetchDumps downloads the known dump files under prefix into destDir.
// Objects missing from the bucket are skipped, matching how the importer
// treats missing local files.
func (f *SpacesFetcher) FetchDumps(ctx context.Context, prefix, destDir string) error {
	for _, name := range dumpFiles {
		key := path.Join(prefix, name)

		obj, err := f.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &f.bucket,
			Key:    &key,
		})
		if err != nil {
			var noSuchKey *types.NoSuchKey
			if errors.As(err, &noSuchKey) {
				slog.Info("Dump object not found, skipping",
					slog.String("type", "sys"),
					slog.String("bucket", f.bucket),
					slog.String("key", key))
				continue
			}
			return fmt.Errorf("failed to fetch %s from %s: %w", key, f.bucket, err)
		}

		if err := writeDump(filepath.Join(destDir, name), obj.Body); err != nil {
			obj.Body.Close()
			return err
		}
		obj.Body.Close()

		slog.Info("Dump object downloaded",
			slog.String("type", "sys"),
			slog.String("bucket", f.bucket),
			slog.String("key", key))
	}
	return nil
}

func writeDump(dest string, body io.Reader) error {
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// ParseSpacesURL splits an s3://bucket/prefix location into its bucket and
// object prefix. The prefix may be empty when the dumps sit at the bucket
// root.
func ParseSpacesURL(raw string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3:// location: %s", raw)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in location: %s", raw)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
