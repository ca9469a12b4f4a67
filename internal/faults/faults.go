// Package faults normalizes heterogeneous failures into a fixed taxonomy
// with user-facing messaging and a retry eligibility flag.
package faults

import "time"

// Type enumerates the failure taxonomy.
type Type string

const (
	InsufficientBalance    Type = "INSUFFICIENT_BALANCE"
	DatabaseConnection     Type = "DATABASE_CONNECTION"
	BlockchainFailure      Type = "BLOCKCHAIN_FAILURE"
	ValidationError        Type = "VALIDATION_ERROR"
	ConcurrentModification Type = "CONCURRENT_MODIFICATION"
	ServiceUnavailable     Type = "SERVICE_UNAVAILABLE"
	Timeout                Type = "TIMEOUT"
	RollbackFailed         Type = "ROLLBACK_FAILED"
	NetworkError           Type = "NETWORK_ERROR"
	Unknown                Type = "UNKNOWN"
)

// Severity drives UI emphasis for a classified failure.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// UserMessage is the display triple shown to the end user.
type UserMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// Technical carries the raw failure detail for the collapsible debug view.
type Technical struct {
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Context attaches the business situation a failure occurred in. Numeric
// context lives here, never interpolated into the static user messages.
type Context struct {
	UserID        string  `json:"user_id,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	ServiceType   string  `json:"service_type,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Operation     string  `json:"operation,omitempty"`
}

// TransactionError is the fully classified failure handed to callers and
// rendered by error displays.
type TransactionError struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	Severity    Severity    `json:"severity"`
	UserMessage UserMessage `json:"user_message"`
	Technical   Technical   `json:"technical"`
	Context     *Context    `json:"context,omitempty"`
}

// Fault is the tagged error produced at boundaries that already know their
// failure class, so the classifier receives a typed value instead of
// guessing from strings.
type Fault struct {
	Type    Type
	Code    string
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return string(f.Type)
}

func (f *Fault) Unwrap() error { return f.Err }

// New builds a tagged fault with an explicit type.
func New(t Type, message string) *Fault {
	return &Fault{Type: t, Message: message}
}

// Wrap tags an underlying error with an explicit type.
func Wrap(t Type, err error) *Fault {
	return &Fault{Type: t, Err: err}
}
