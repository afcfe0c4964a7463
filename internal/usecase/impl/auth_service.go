package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	deliverycontext "tracker/internal/delivery/context"
	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/repository"
	"tracker/internal/domain/service"
	"tracker/internal/errors"
	"tracker/internal/usecase"

	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

const (
	loginMethodPassword  = "password"
	loginMethodFederated = "federated"

	messageLoginSuccess      = "Login successful"
	messageFederatedSignup   = "User registered successfully"
	messageFederatedLoggedIn = "User logged in successfully"

	// federatedResolveTimeout bounds a shared resolution once detached from its caller.
	federatedResolveTimeout = 10 * time.Second

	// timingPassword is hashed once so unknown emails cost one bcrypt compare.
	timingPassword = "tracker-timing-equalizer"
)

type authService struct {
	txManager    repository.TransactionManager
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	verifier     service.FederatedVerifier
	limiter      service.LoginLimiter
	metrics      service.AuthMetrics
	publisher    service.EventPublisher
	logger       *slog.Logger

	resolveGroup singleflight.Group
	dummyOnce    sync.Once
	dummyHash    string
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Verifier     service.FederatedVerifier `optional:"true"`
	Limiter      service.LoginLimiter
	Metrics      service.AuthMetrics `optional:"true"`
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		verifier:     params.Verifier,
		limiter:      params.Limiter,
		metrics:      params.Metrics,
		publisher:    params.Publisher,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a password account and returns its first token pair.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	if email == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email is required")
	}

	if _, err := srv.accountRepo.FindByEmail(ctx, email); err == nil {
		return nil, domainerrors.ErrEmailTaken.WrapMessage("register")
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, errors.Wrap(err, "failed to check existing account")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, domainerrors.ErrValidationFailed) {
			return nil, err
		}

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	account := &entity.Account{
		Email:        email,
		PasswordHash: hash,
		Provider:     entity.ProviderLocal,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}
	if err := srv.accountRepo.Create(ctx, account); err != nil {
		return nil, errors.Wrap(err, "failed to create account")
	}

	tokens, err := srv.tokenService.IssueTokens(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens")
	}

	srv.log(ctx).Info("Account registered",
		slog.String("account_id", account.ID.String()),
		slog.String("email", email),
	)
	srv.publish(ctx, service.AccountRegistered, account)

	return &usecase.RegisterOutput{Account: account, Tokens: tokens}, nil
}

// Login verifies a password and returns a token pair.
// Every failure reason yields the same external error.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	limiterKey := email + "|" + input.RemoteAddr
	logger := srv.log(ctx).With(slog.String("email", email))

	allowed, err := srv.limiter.Allow(ctx, limiterKey)
	if err != nil {
		logger.Warn("Login limiter unavailable", slog.Any("error", err))
	}
	if !allowed {
		srv.observeLogin(loginMethodPassword, service.LoginOutcomeThrottle)
		logger.Warn("Login throttled")

		return nil, domainerrors.ErrTooManyAttempts.WrapMessage("login")
	}

	account, err := srv.verifyPassword(ctx, logger, email, input.Password)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, err
		}
		if recErr := srv.limiter.RecordFailure(ctx, limiterKey); recErr != nil {
			logger.Warn("Failed to record login failure", slog.Any("error", recErr))
		}
		srv.observeLogin(loginMethodPassword, service.LoginOutcomeFailure)

		return nil, err
	}

	if err := srv.limiter.Reset(ctx, limiterKey); err != nil {
		logger.Warn("Failed to reset login limiter", slog.Any("error", err))
	}

	tokens, err := srv.tokenService.IssueTokens(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens")
	}
	srv.observeLogin(loginMethodPassword, service.LoginOutcomeSuccess)
	logger.Info("Login succeeded", slog.String("account_id", account.ID.String()))

	return &usecase.LoginOutput{
		Message: messageLoginSuccess,
		Account: account,
		Tokens:  tokens,
	}, nil
}

// verifyPassword reads from the primary so a fresh registration can log in at once.
func (srv *authService) verifyPassword(ctx context.Context, logger *slog.Logger, email, password string) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		srv.hasher.Check(password, srv.timingHash())
		logger.Info("Login failed", slog.String("reason", "unknown email"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login")
	case err != nil:
		return nil, errors.Wrap(err, "failed to find account")
	}

	if !account.HasPassword() {
		logger.Info("Login failed",
			slog.String("reason", "federated account without password"),
			slog.String("account_id", account.ID.String()),
		)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login")
	}

	if !srv.hasher.Check(password, account.PasswordHash) {
		logger.Info("Login failed",
			slog.String("reason", "wrong password"),
			slog.String("account_id", account.ID.String()),
		)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login")
	}

	return account, nil
}

func (srv *authService) timingHash() string {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(timingPassword)
		if err == nil {
			srv.dummyHash = hash
		}
	})

	return srv.dummyHash
}

type federatedResolution struct {
	account *entity.Account
	created bool
	linked  bool
}

// FederatedLogin resolves a federated identity to an account, linking or creating as needed.
func (srv *authService) FederatedLogin(ctx context.Context, input *usecase.FederatedLoginInput) (*usecase.FederatedLoginOutput, error) {
	identity, err := srv.federatedIdentity(ctx, input)
	if err != nil {
		srv.observeLogin(loginMethodFederated, service.LoginOutcomeFailure)

		return nil, err
	}

	resolution, shared, err := srv.resolveShared(ctx, identity)
	if err != nil {
		srv.observeLogin(loginMethodFederated, service.LoginOutcomeFailure)

		return nil, err
	}

	tokens, err := srv.tokenService.IssueTokens(resolution.account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens")
	}
	srv.observeLogin(loginMethodFederated, service.LoginOutcomeSuccess)

	srv.log(ctx).Info("Federated login succeeded",
		slog.String("account_id", resolution.account.ID.String()),
		slog.String("email", identity.Email),
		slog.Bool("created", resolution.created),
		slog.Bool("linked", resolution.linked),
		slog.Bool("shared", shared),
	)

	message := messageFederatedLoggedIn
	if input.Mode == usecase.FederatedModeSignup {
		message = messageFederatedSignup
	}

	return &usecase.FederatedLoginOutput{
		Message: message,
		Account: resolution.account,
		Tokens:  tokens,
		Created: resolution.created,
		Linked:  resolution.linked,
	}, nil
}

// resolveShared collapses concurrent resolutions of one identity. The shared work
// outlives the caller that started it, so each caller only waits on its own ctx.
func (srv *authService) resolveShared(ctx context.Context, identity *service.FederatedIdentity) (*federatedResolution, bool, error) {
	key := identity.Email + "|" + identity.Subject
	results := srv.resolveGroup.DoChan(key, func() (any, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), federatedResolveTimeout)
		defer cancel()

		resolution, err := srv.resolveWithRetry(workCtx, identity)
		if err != nil {
			return nil, err
		}
		switch {
		case resolution.created:
			srv.publish(workCtx, service.AccountRegistered, resolution.account)
		case resolution.linked:
			srv.publish(workCtx, service.AccountLinked, resolution.account)
		}

		return resolution, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, errors.WithStack(ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return nil, result.Shared, result.Err
		}

		return result.Val.(*federatedResolution), result.Shared, nil
	}
}

// federatedIdentity returns verified claims when a verifier is configured, else the payload as sent.
func (srv *authService) federatedIdentity(ctx context.Context, input *usecase.FederatedLoginInput) (*service.FederatedIdentity, error) {
	var identity *service.FederatedIdentity
	if srv.verifier != nil {
		if strings.TrimSpace(input.IDToken) == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("id_token is required")
		}
		verified, err := srv.verifier.Verify(ctx, input.IDToken)
		if err != nil {
			srv.log(ctx).Info("Federated token rejected",
				slog.String("verifier", srv.verifier.Name()),
				slog.Any("error", err),
			)

			return nil, domainerrors.ErrFederatedTokenInvalid.WrapMessage("federated login")
		}
		identity = verified
	} else {
		identity = &service.FederatedIdentity{
			Subject:       input.FederatedID,
			Email:         input.Email,
			EmailVerified: input.EmailVerified,
			Name:          input.DisplayName,
			Picture:       input.AvatarURL,
		}
	}

	identity.Subject = strings.TrimSpace(identity.Subject)
	identity.Email = entity.NormalizeEmail(identity.Email)
	identity.Name = strings.TrimSpace(identity.Name)
	if identity.Subject == "" || identity.Email == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("Missing required fields")
	}

	return identity, nil
}

// resolveWithRetry retries once when a concurrent writer in another process won the insert.
func (srv *authService) resolveWithRetry(ctx context.Context, identity *service.FederatedIdentity) (*federatedResolution, error) {
	resolution, err := srv.resolve(ctx, identity)
	if err == nil {
		return resolution, nil
	}
	if !errors.Is(err, domainerrors.ErrEmailTaken) && !errors.Is(err, domainerrors.ErrConflict) {
		return nil, err
	}

	srv.log(ctx).Info("Federated login raced another writer, retrying",
		slog.String("email", identity.Email),
	)

	return srv.resolve(ctx, identity)
}

func (srv *authService) resolve(ctx context.Context, identity *service.FederatedIdentity) (*federatedResolution, error) {
	resolution := &federatedResolution{}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		accounts := factory.NewAccountRepository()

		account, err := accounts.FindByFederatedID(ctx, identity.Subject)
		if err == nil {
			resolution.account = account

			return nil
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to find account by federated id")
		}

		account, err = accounts.FindByEmailForUpdate(ctx, identity.Email)
		switch {
		case err == nil:
			if account.HasFederatedID() && account.FederatedID != identity.Subject {
				return domainerrors.ErrFederatedIDConflict.WrapMessage("federated login")
			}
			account.FederatedID = identity.Subject
			if identity.EmailVerified {
				account.EmailVerified = true
			}
			if account.Picture == "" {
				account.Picture = identity.Picture
			}
			if err := accounts.Update(ctx, account); err != nil {
				return errors.Wrap(err, "failed to link federated id")
			}
			resolution.account = account
			resolution.linked = true

			return nil
		case !errors.Is(err, repository.ErrAccountNotFound):
			return errors.Wrap(err, "failed to find account by email")
		}

		first, last := entity.SplitDisplayName(identity.Name)
		account = &entity.Account{
			Email:         identity.Email,
			FederatedID:   identity.Subject,
			Provider:      entity.ProviderGoogle,
			EmailVerified: identity.EmailVerified,
			FirstName:     first,
			LastName:      last,
			Picture:       identity.Picture,
		}
		if err := accounts.Create(ctx, account); err != nil {
			return errors.Wrap(err, "failed to create federated account")
		}
		resolution.account = account
		resolution.created = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	return resolution, nil
}

// VerifyToken validates an access token and loads the account it names.
func (srv *authService) VerifyToken(ctx context.Context, accessToken string) (*entity.Account, error) {
	claims, err := srv.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WrapMessage(err.Error())
	}

	account, err := srv.accountRepo.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrInvalidToken.WrapMessage("account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load account")
	}

	return account, nil
}

// RefreshToken re-issues an access token. Refresh tokens of deleted accounts are refused.
func (srv *authService) RefreshToken(ctx context.Context, refreshToken string) (*usecase.RefreshOutput, error) {
	claims, err := srv.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WrapMessage(err.Error())
	}

	if _, err := srv.accountRepo.FindByID(ctx, claims.AccountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrInvalidToken.WrapMessage("account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load account")
	}

	accessToken, expiresAt, err := srv.tokenService.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WrapMessage(err.Error())
	}

	return &usecase.RefreshOutput{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

func (srv *authService) observeLogin(method, outcome string) {
	if srv.metrics != nil {
		srv.metrics.ObserveLogin(method, outcome)
	}
}

// publish sends an account event after commit. Failures are logged, never returned.
func (srv *authService) publish(ctx context.Context, eventType service.AccountEventType, account *entity.Account) {
	publishAccountEvent(ctx, srv.log(ctx), srv.publisher, &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		AccountID:  account.ID.String(),
		Email:      account.Email,
		Provider:   string(account.Provider),
		OccurredAt: time.Now().UTC(),
	})
}
