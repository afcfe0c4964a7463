package entity

import "github.com/google/uuid"

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	AccountID uuid.UUID
}

// Anonymous is the caller of an unauthenticated request.
var Anonymous = Caller{}

// NewCaller returns a caller acting as the given account.
func NewCaller(accountID uuid.UUID) Caller {
	return Caller{AccountID: accountID}
}

// Authenticated reports whether the caller carries an account identity.
func (c Caller) Authenticated() bool {
	return c.AccountID != uuid.Nil
}
