// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies how an account was first created.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// Account is the tenant root. Every owned record points back to one Account.
type Account struct {
	ID            uuid.UUID // The Global Unique Identifier (GUID) for the account.
	Email         string    // Normalized login email, unique across accounts.
	PasswordHash  string    // bcrypt hash; empty for federated-only accounts.
	FederatedID   string    // External subject (uid / sub); empty until linked.
	Provider      Provider  // Creation path, "local" or "google".
	EmailVerified bool
	FirstName     string
	LastName      string
	Picture       string   // Avatar URL supplied by the federated provider.
	Rate          *float64 // Hourly billing rate, nil when unset.
	Cost          *float64 // Hourly internal cost, nil when unset.
	WorkHours     *string  // Free-text working hours, e.g. "09:00-17:00".
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the account can log in with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// HasFederatedID reports whether a federated identity is linked.
func (a *Account) HasFederatedID() bool {
	return a.FederatedID != ""
}

// FullName joins first and last name.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitDisplayName splits on the first space: "Ada Lovelace King" -> ("Ada", "Lovelace King").
func SplitDisplayName(displayName string) (first, last string) {
	displayName = strings.TrimSpace(displayName)
	first, last, _ = strings.Cut(displayName, " ")

	return first, strings.TrimSpace(last)
}
