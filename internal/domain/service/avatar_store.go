package service

import (
	"context"
	"errors"
	"io"
)

// ErrAvatarNotFound is returned by Open for unknown keys.
var ErrAvatarNotFound = errors.New("avatar not found")

// AvatarRoot is the key prefix shared by every stored avatar.
const AvatarRoot = "avatars/"

// AvatarKeyPrefix is the key prefix holding every avatar of one account.
func AvatarKeyPrefix(accountID string) string {
	return AvatarRoot + accountID + "/"
}

// AvatarStore keeps uploaded avatar images in blob storage.
type AvatarStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Open returns the object and its content type. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)

	// URL builds the client-facing URL of a key.
	URL(key string) string

	// DeletePrefix removes every object under prefix and returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
