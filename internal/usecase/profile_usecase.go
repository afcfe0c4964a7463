package usecase

import (
	"context"
	"io"

	"tracker/internal/domain/entity"
)

// ProfileView joins an account with its profile for display.
type ProfileView struct {
	Account   *entity.Account
	Profile   *entity.Profile
	AvatarURL *string // Federated picture, else uploaded avatar, else nil.
}

// UpdateProfileInput is a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Rate      *float64
	Cost      *float64
	WorkHours *string

	Phone    *string
	JobTitle *string
	Company  *string
	Bio      *string
	Location *string
	Website  *string
	Timezone *string
}

// AvatarUpload is an image received from a client.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	// GetProfile returns the caller's profile, creating an empty one on first access.
	GetProfile(ctx context.Context, caller entity.Caller) (*ProfileView, error)
	UpdateProfile(ctx context.Context, caller entity.Caller, input *UpdateProfileInput) (*ProfileView, error)
	UploadAvatar(ctx context.Context, caller entity.Caller, upload *AvatarUpload) (*ProfileView, error)

	// OpenAvatar streams a stored avatar by key. Keys are public, like a CDN URL.
	OpenAvatar(ctx context.Context, key string) (io.ReadCloser, string, error)
}
