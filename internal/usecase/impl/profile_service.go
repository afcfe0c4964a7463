package impl

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
	"tracker/internal/usecase"
	"tracker/internal/util"

	"go.uber.org/fx"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 2 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type profileService struct {
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	avatars     service.AvatarStore
	logger      *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	ProfileRepo repository.ProfileRepository
	Avatars     service.AvatarStore
	Logger      *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		profileRepo: params.ProfileRepo,
		avatars:     params.Avatars,
		logger:      params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *profileService) GetProfile(ctx context.Context, caller entity.Caller) (*usecase.ProfileView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	account, err := srv.accountRepo.FindByID(ctx, caller.AccountID)
	if err != nil {
		return nil, translateRepoError(err, "load account")
	}

	profile, err := srv.profileRepo.GetOrCreate(ctx, caller)
	if err != nil {
		return nil, translateRepoError(err, "load profile")
	}

	return srv.view(account, profile), nil
}

// UpdateProfile writes account and profile fields in one transaction.
func (srv *profileService) UpdateProfile(ctx context.Context, caller entity.Caller, input *usecase.UpdateProfileInput) (*usecase.ProfileView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	var (
		account *entity.Account
		profile *entity.Profile
	)
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		accounts := factory.NewAccountRepository()

		found, err := accounts.FindByID(ctx, caller.AccountID)
		if err != nil {
			return translateRepoError(err, "load account")
		}
		if applyAccountFields(found, input) {
			if err := accounts.Update(ctx, found); err != nil {
				return errors.Wrap(err, "failed to update account")
			}
		}
		account = found

		profile, err = factory.NewProfileRepository().Update(ctx, caller, func(p *entity.Profile) error {
			applyProfileFields(p, input)

			return nil
		})

		return translateRepoError(err, "update profile")
	})
	if err != nil {
		return nil, err
	}

	return srv.view(account, profile), nil
}

func validateProfileInput(input *usecase.UpdateProfileInput) error {
	if input.Rate != nil && *input.Rate < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("rate must not be negative")
	}
	if input.Cost != nil && *input.Cost < 0 {
		return domainerrors.ErrValidationFailed.WithDetails("cost must not be negative")
	}

	return nil
}

// applyAccountFields reports whether any account column changed.
func applyAccountFields(account *entity.Account, input *usecase.UpdateProfileInput) bool {
	changed := false
	if input.FirstName != nil {
		account.FirstName = strings.TrimSpace(*input.FirstName)
		changed = true
	}
	if input.LastName != nil {
		account.LastName = strings.TrimSpace(*input.LastName)
		changed = true
	}
	if input.Rate != nil {
		rate := *input.Rate
		account.Rate = &rate
		changed = true
	}
	if input.Cost != nil {
		cost := *input.Cost
		account.Cost = &cost
		changed = true
	}
	if input.WorkHours != nil {
		workHours := strings.TrimSpace(*input.WorkHours)
		account.WorkHours = &workHours
		if workHours == "" {
			account.WorkHours = nil
		}
		changed = true
	}

	return changed
}

func applyProfileFields(profile *entity.Profile, input *usecase.UpdateProfileInput) {
	setIfPresent(&profile.Phone, input.Phone)
	setIfPresent(&profile.JobTitle, input.JobTitle)
	setIfPresent(&profile.Company, input.Company)
	setIfPresent(&profile.Bio, input.Bio)
	setIfPresent(&profile.Location, input.Location)
	setIfPresent(&profile.Timezone, input.Timezone)
	if input.Website != nil {
		profile.Website = NormalizeWebsite(*input.Website)
	}
}

// NormalizeWebsite prefixes https:// when the value has no scheme.
func NormalizeWebsite(website string) string {
	website = strings.TrimSpace(website)
	if website == "" || strings.Contains(website, "://") {
		return website
	}

	return "https://" + website
}

// UploadAvatar stores the image under a content-addressed key and points the profile at it.
func (srv *profileService) UploadAvatar(ctx context.Context, caller entity.Caller, upload *usecase.AvatarUpload) (*usecase.ProfileView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if upload == nil || upload.Content == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("avatar file is required")
	}
	if upload.Size > MaxAvatarBytes {
		return nil, tooLarge()
	}

	content, err := io.ReadAll(io.LimitReader(upload.Content, MaxAvatarBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read avatar")
	}
	if len(content) > MaxAvatarBytes {
		return nil, tooLarge()
	}
	if len(content) == 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("avatar file is empty")
	}

	contentType := http.DetectContentType(content)
	ext, ok := avatarExtensions[contentType]
	if !ok || !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, domainerrors.ErrUnsupportedMediaType.WithDetails("got " + contentType)
	}

	sum, err := util.Checksum(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash avatar")
	}
	key := service.AvatarKeyPrefix(caller.AccountID.String()) + sum[:16] + ext

	if err := srv.avatars.Put(ctx, key, bytes.NewReader(content), contentType); err != nil {
		return nil, errors.Wrap(err, "failed to store avatar")
	}

	var previous string
	profile, err := srv.profileRepo.Update(ctx, caller, func(p *entity.Profile) error {
		previous = p.AvatarKey
		p.AvatarKey = key

		return nil
	})
	if err != nil {
		return nil, translateRepoError(err, "update profile")
	}

	if previous != "" && previous != key {
		if _, err := srv.avatars.DeletePrefix(ctx, previous); err != nil {
			srv.log(ctx).Warn("Failed to remove previous avatar",
				slog.String("key", previous),
				slog.Any("error", err),
			)
		}
	}
	srv.log(ctx).Info("Avatar uploaded",
		slog.String("account_id", caller.AccountID.String()),
		slog.String("key", key),
		slog.String("size", util.FormatBytes(int64(len(content)))),
	)

	account, err := srv.accountRepo.FindByID(ctx, caller.AccountID)
	if err != nil {
		return nil, translateRepoError(err, "load account")
	}

	return srv.view(account, profile), nil
}

func tooLarge() error {
	return domainerrors.ErrFileTooLarge.WithDetails("avatar must not exceed " + util.FormatBytes(MaxAvatarBytes))
}

func (srv *profileService) OpenAvatar(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !strings.HasPrefix(key, service.AvatarRoot) || strings.Contains(key, "..") {
		return nil, "", domainerrors.ErrNotFound.WrapMessage("avatar not found")
	}

	reader, contentType, err := srv.avatars.Open(ctx, key)
	if err != nil {
		if errors.Is(err, service.ErrAvatarNotFound) {
			return nil, "", domainerrors.ErrNotFound.WrapMessage("avatar not found")
		}

		return nil, "", errors.Wrap(err, "failed to open avatar")
	}

	return reader, contentType, nil
}

// view picks the federated picture for google accounts, else the uploaded avatar.
func (srv *profileService) view(account *entity.Account, profile *entity.Profile) *usecase.ProfileView {
	result := &usecase.ProfileView{Account: account, Profile: profile}

	switch {
	case account.Provider == entity.ProviderGoogle && account.Picture != "":
		avatarURL := account.Picture
		result.AvatarURL = &avatarURL
	case profile.AvatarKey != "":
		avatarURL := srv.avatars.URL(profile.AvatarKey)
		result.AvatarURL = &avatarURL
	}

	return result
}
