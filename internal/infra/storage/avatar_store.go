// Package storage keeps avatar images in a gocloud.dev bucket.
package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"tracker/config"
	"tracker/internal/domain/service"
	"tracker/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"gocloud.dev/gcerrors"
)

type blobAvatarStore struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

// NewBlobAvatarStore wraps an open bucket.
func NewBlobAvatarStore(bucket *blob.Bucket, publicBaseURL string) service.AvatarStore {
	return &blobAvatarStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *blobAvatarStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrapf(err, "open avatar writer %s", key)
	}

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()

		return errors.Wrapf(err, "write avatar %s", key)
	}

	return errors.Wrapf(writer.Close(), "commit avatar %s", key)
}

func (s *blobAvatarStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	reader, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, "", service.ErrAvatarNotFound
		}

		return nil, "", errors.Wrapf(err, "open avatar %s", key)
	}

	return reader, reader.ContentType(), nil
}

func (s *blobAvatarStore) URL(key string) string {
	if key == "" {
		return ""
	}
	// Without a CDN the API serves keys itself under GET /avatars/*.
	if s.publicBaseURL == "" {
		return "/" + key
	}

	return s.publicBaseURL + "/" + key
}

func (s *blobAvatarStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})

	deleted := 0
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return deleted, nil
		}
		if err != nil {
			return deleted, errors.Wrapf(err, "list avatars under %s", prefix)
		}
		if obj.IsDir {
			continue
		}

		if err := s.bucket.Delete(ctx, obj.Key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return deleted, errors.Wrapf(err, "delete avatar %s", obj.Key)
		}
		deleted++
	}
}

// StoreParams holds dependencies for the avatar store, injected by Fx
type StoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewAvatarStore opens the configured bucket URL and closes it on shutdown.
func NewAvatarStore(params StoreParams) (service.AvatarStore, error) {
	cfg := params.Config.Storage

	bucket, err := blob.OpenBucket(params.Ctx, cfg.AvatarBucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open avatar bucket %s", cfg.AvatarBucketURL)
	}

	params.Logger.Info("Avatar bucket opened", slog.String("url", cfg.AvatarBucketURL))

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return NewBlobAvatarStore(bucket, cfg.PublicBaseURL), nil
}

// Module provides the avatar storage FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewAvatarStore),
)
