// Package employee serves courier and collector lookups by code.
package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrEmployeeNotFound is returned when no active employee has the code
var ErrEmployeeNotFound = shared.NewDomainError("NOT_FOUND", "Employee not found")

// Service handles employee lookups and maintenance
type Service struct {
	repo    employee.Repository
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// NewService creates a new Service. metrics may be nil.
func NewService(repo employee.Repository, metrics *telemetry.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup returns the contact of the active employee whose code equals the trimmed code.
// Matching is case-sensitive.
func (s *Service) Lookup(ctx context.Context, code string) (*employee.Contact, error) {
	code = employee.NormalizeCode(code)
	ctx, span := telemetry.StartServiceSpan(ctx, "EmployeeService", "Lookup",
		telemetry.WithAttribute(telemetry.SpanAttrEmployeeCode, code))
	defer span.End()

	if code == "" {
		s.metrics.RecordEmployeeLookup(ctx, telemetry.OutcomeInvalid)
		return nil, ErrEmployeeNotFound
	}

	e, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.metrics.RecordEmployeeLookup(ctx, telemetry.OutcomeNotFound)
			return nil, ErrEmployeeNotFound
		}
		s.metrics.RecordEmployeeLookup(ctx, telemetry.OutcomeFailure)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	s.metrics.RecordEmployeeLookup(ctx, telemetry.OutcomeSuccess)
	contact := e.Contact()
	return &contact, nil
}

// Upsert creates the employee or replaces its contact details.
// The returned flag is true when a new employee was created.
func (s *Service) Upsert(ctx context.Context, code string, req UpsertEmployeeRequest) (*EmployeeResponse, bool, error) {
	code = employee.NormalizeCode(code)
	ctx, span := telemetry.StartServiceSpan(ctx, "EmployeeService", "Upsert",
		telemetry.WithAttribute(telemetry.SpanAttrEmployeeCode, code))
	defer span.End()

	created := false
	e, err := s.repo.FindByCode(ctx, code)
	switch {
	case err == nil:
		if err := e.UpdateContact(req.Name, req.Phone); err != nil {
			return nil, false, err
		}
	case errors.Is(err, shared.ErrNotFound):
		e, err = employee.New(code, req.Name, req.Phone)
		if err != nil {
			return nil, false, err
		}
		created = true
	default:
		telemetry.RecordError(span, err)
		return nil, false, fmt.Errorf("failed to find employee: %w", err)
	}

	if req.Active != nil {
		if *req.Active {
			e.Activate()
		} else {
			e.Deactivate()
		}
	}

	if err := s.repo.Save(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		return nil, false, fmt.Errorf("failed to save employee: %w", err)
	}

	logger.L(ctx, s.logger).Info("employee saved",
		zap.String("code", e.Code),
		zap.Bool("created", created),
		zap.Bool("active", e.Active))

	return toEmployeeResponse(e), created, nil
}
