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

// Common domain errors. NotFound is deliberately returned for absent,
// soft-deleted and foreign-tenant lookups alike so that callers cannot
// probe for existence across tenants.
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists    = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrVersionConflict  = NewDomainError("VERSION_CONFLICT", "Resource was modified by another writer; re-read and retry")
	ErrInvalidTarget    = NewDomainError("INVALID_TARGET", "Reorder target does not reference a sibling in this container")
	ErrPositionConflict = NewDomainError("POSITION_CONFLICT", "Requested position is already occupied")
	ErrWIPLimitReached  = NewDomainError("WIP_LIMIT_REACHED", "Column is at its work-in-progress limit")
	ErrInvalidState     = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ErrConcurrentPlacement reports that a placement transaction collided
// with another writer on the same sibling position at commit time.
// Coordinators retry against a fresh sibling snapshot; the error itself
// never reaches the API surface.
var ErrConcurrentPlacement = NewDomainError("CONCURRENT_PLACEMENT", "Placement collided with a concurrent writer")
