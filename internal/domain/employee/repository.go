package employee

import "context"

// Repository defines the interface for employee persistence
type Repository interface {
	// FindActiveByCode finds an active employee whose code equals code exactly.
	// Returns shared.ErrNotFound when there is no match.
	FindActiveByCode(ctx context.Context, code string) (*Employee, error)

	// FindByCode finds an employee regardless of status
	FindByCode(ctx context.Context, code string) (*Employee, error)

	// Save creates or updates an employee
	Save(ctx context.Context, e *Employee) error
}
