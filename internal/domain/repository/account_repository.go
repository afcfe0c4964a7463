// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no account matches a lookup.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// Emails passed in must already be normalized.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its login email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByEmailForUpdate is FindByEmail with a row lock, for use inside a transaction.
	FindByEmailForUpdate(ctx context.Context, email string) (*entity.Account, error)

	// FindByFederatedID retrieves the account linked to an external subject.
	FindByFederatedID(ctx context.Context, federatedID string) (*entity.Account, error)

	// Create persists a new account. Unique violations return domain EmailTaken.
	Create(ctx context.Context, account *entity.Account) error

	// Update saves every mutable column of an existing account.
	Update(ctx context.Context, account *entity.Account) error

	// Delete removes an account row.
	Delete(ctx context.Context, id uuid.UUID) error
}
