package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// SpacesConfig addresses a DigitalOcean Spaces bucket.
type SpacesConfig struct {
	Key    string
	Secret string
	Region string
	Bucket string
	Root   string
}

// SpacesSource reads <root>/<server>/masters/<kind>.json objects from a Spaces bucket.
type SpacesSource struct {
	client *s3.Client
	bucket string
	region string
	root   string
}

func NewSpacesSource(ctx context.Context, cfg SpacesConfig) (*SpacesSource, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &SpacesSource{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: cfg.Region,
		root:   strings.Trim(cfg.Root, "/"),
	}, nil
}

func (s *SpacesSource) Name() string {
	return "spaces:" + s.bucket
}

func (s *SpacesSource) key(parts ...string) string {
	return path.Join(append([]string{s.root}, parts...)...)
}

func (s *SpacesSource) Load(ctx context.Context, server catalog.Server) (*masters.Snapshot, error) {
	return loadSnapshot(ctx, server, func(ctx context.Context, kind string) (masters.Decoder, func() error, bool, error) {
		key := s.key(string(server), "masters", kind+".json")
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		})
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil, false, nil
		}
		if err != nil {
			return nil, nil, false, err
		}
		return json.NewDecoder(out.Body).Decode, out.Body.Close, true, nil
	})
}

// Exists checks an image object with a short timeout. It satisfies ObjectChecker.
func (s *SpacesSource) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	fullKey := s.key(key)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &fullKey,
	})
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return err == nil, err
}

// BaseURL is the public address of the bucket root.
func (s *SpacesSource) BaseURL() string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, s.root)
}
