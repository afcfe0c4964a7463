package service

import "context"

// LoginLimiter throttles repeated failed logins for one key (email and remote address).
type LoginLimiter interface {
	// Allow reports false while the key is locked out.
	Allow(ctx context.Context, key string) (bool, error)

	// RecordFailure counts a failed attempt and locks the key once the limit is reached.
	RecordFailure(ctx context.Context, key string) error

	// Reset clears the key after a successful login.
	Reset(ctx context.Context, key string) error
}
