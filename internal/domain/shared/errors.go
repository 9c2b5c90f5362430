package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")

	// ErrConsistencyViolation is returned when the ingredient aggregate and the
	// batch ledger disagree (e.g. total stock is positive but no open batches
	// exist). It is a server-side defect and must never be coerced to success.
	ErrConsistencyViolation = NewDomainError("CONSISTENCY_VIOLATION", "Stock aggregate and batch ledger are out of sync")

	// ErrTransactionTimeout is returned when a ledger transaction exceeds its
	// execution budget. Callers may retry with backoff; no partial state persists.
	ErrTransactionTimeout = NewDomainError("TRANSACTION_TIMEOUT", "Transaction exceeded its time budget")
)
