package usecase

import (
	"context"

	"tracker/internal/domain/entity"
)

// AccountUsecase handles the lifecycle of the caller's own account.
type AccountUsecase interface {
	// DeleteAccount removes the account and every record it owns in one transaction.
	DeleteAccount(ctx context.Context, caller entity.Caller) error
}
