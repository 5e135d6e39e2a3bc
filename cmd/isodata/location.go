package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hupe1980/isodata/blobstore"
	"github.com/hupe1980/isodata/blobstore/minio"
	"github.com/hupe1980/isodata/blobstore/s3"
)

// location is a parsed input or output address.
type location struct {
	scheme string // "", "s3" or "minio"
	bucket string
	name   string
}

func parseLocation(raw string) (location, error) {
	if !strings.Contains(raw, "://") {
		return location{name: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	switch u.Scheme {
	case "s3", "minio":
	case "file":
		return location{name: u.Path}, nil
	default:
		return location{}, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return location{}, fmt.Errorf("location %q must be %s://bucket/key", raw, u.Scheme)
	}
	return location{scheme: u.Scheme, bucket: u.Host, name: key}, nil
}

func (l location) String() string {
	if l.scheme == "" {
		return l.name
	}
	return l.scheme + "://" + l.bucket + "/" + l.name
}

// openStore returns the store holding l and the blob name within it.
func openStore(ctx context.Context, l location, cfg *Config) (blobstore.BlobStore, string, error) {
	switch l.scheme {
	case "":
		return blobstore.NewLocalStore(filepath.Dir(l.name)), filepath.Base(l.name), nil
	case "s3":
		var opts []s3.Option
		if cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.S3.Endpoint, cfg.S3.PathStyle))
		}
		store, err := s3.New(ctx, l.bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, l.name, nil
	case "minio":
		mc := cfg.MinIO
		mc.Bucket = l.bucket
		store, err := minio.New(mc)
		if err != nil {
			return nil, "", err
		}
		return store, l.name, nil
	default:
		return nil, "", fmt.Errorf("unsupported scheme %q", l.scheme)
	}
}
