package service

// AuthMetrics records authentication outcomes.
type AuthMetrics interface {
	// ObserveLogin counts one login attempt. method is "password" or "federated".
	ObserveLogin(method, outcome string)
}

// Login outcomes
const (
	LoginOutcomeSuccess  = "success"
	LoginOutcomeFailure  = "failure"
	LoginOutcomeThrottle = "throttled"
)
