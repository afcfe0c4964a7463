package service

import (
	"context"
	"time"
)

// AccountEventType names what happened to an account.
type AccountEventType string

const (
	AccountRegistered AccountEventType = "account.registered"
	AccountLinked     AccountEventType = "account.linked"
	AccountDeleted    AccountEventType = "account.deleted"
)

// AccountEvent is published after an account lifecycle change commits.
type AccountEvent struct {
	RequestID  string           `json:"request_id,omitempty"` // For distributed tracing
	Type       AccountEventType `json:"type"`
	AccountID  string           `json:"account_id"`
	Email      string           `json:"email,omitempty"`
	Provider   string           `json:"provider,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
