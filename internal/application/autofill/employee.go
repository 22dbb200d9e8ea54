package autofill

import (
	"context"
	"errors"
	"strings"

	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Roles whose header fields are filled by code
const (
	RoleCourier   = "entregador"
	RoleCollector = "coletor"
)

// EmployeeLookup resolves an employee code.
// Implementations return an error matching shared.ErrNotFound when the code is unknown.
type EmployeeLookup interface {
	LookupEmployee(ctx context.Context, code string) (*employee.Contact, error)
}

// EmployeeFlow fills name and phone of a courier or collector from its code
type EmployeeFlow struct {
	form   Form
	lookup EmployeeLookup
	tokens *RequestTokens
	logger *zap.Logger
}

// NewEmployeeFlow creates an EmployeeFlow. tokens may be shared with other flows on the same form.
func NewEmployeeFlow(form Form, lookup EmployeeLookup, tokens *RequestTokens, logger *zap.Logger) *EmployeeFlow {
	if tokens == nil {
		tokens = NewRequestTokens()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeFlow{
		form:   form,
		lookup: lookup,
		tokens: tokens,
		logger: logger,
	}
}

// OnCommit handles a committed {role}_id field.
// Outcomes are reported inline in the name and phone fields; nothing is alerted.
func (f *EmployeeFlow) OnCommit(ctx context.Context, role string) Outcome {
	key := role + "_id"
	nameField := role + "_nome"
	phoneField := role + "_fone"
	token := f.tokens.Next(key)

	code := strings.TrimSpace(f.form.Value(key))
	if code == "" {
		f.form.SetValue(nameField, "")
		f.form.SetValue(phoneField, "")
		return OutcomeCleared
	}

	contact, err := f.lookup.LookupEmployee(ctx, code)
	if !f.tokens.IsLatest(key, token) {
		return OutcomeStale
	}

	switch {
	case errors.Is(err, shared.ErrNotFound):
		f.form.SetValue(nameField, "")
		f.form.SetValue(phoneField, EmployeeNotFoundText)
		return OutcomeNotFound
	case err != nil:
		f.form.SetValue(nameField, "")
		f.form.SetValue(phoneField, EmployeeErrorText)
		f.logger.Error("employee lookup failed",
			zap.String("field", key),
			zap.String("code", code),
			zap.Error(err))
		return OutcomeFailed
	}

	f.form.SetValue(nameField, contact.Name)
	f.form.SetValue(phoneField, contact.Phone)
	return OutcomeFilled
}
