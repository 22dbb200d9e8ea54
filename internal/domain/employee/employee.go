// Package employee holds the couriers and collectors whose contact details
// are auto-filled into the label header.
package employee

import (
	"errors"
	"strings"

	"github.com/etiqueta/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Employee is a courier or collector known by an internal code
type Employee struct {
	shared.BaseEntity
	Code   string `gorm:"type:varchar(50);not null;uniqueIndex:idx_employees_code" validate:"required,max=50"`
	Name   string `gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Phone  string `gorm:"type:varchar(50)" validate:"max=50"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// Contact is the name/phone pair returned by a lookup
type Contact struct {
	Name  string `json:"nome"`
	Phone string `json:"telefone"`
}

// New creates an active employee. The code is trimmed; lookups match it exactly.
func New(code, name, phone string) (*Employee, error) {
	e := &Employee{
		BaseEntity: shared.NewBaseEntity(),
		Code:       NormalizeCode(code),
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Active:     true,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// NormalizeCode trims surrounding whitespace. Case is preserved.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// Validate checks the field constraints
func (e *Employee) Validate() error {
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return shared.NewDomainError("INVALID_INPUT", "employee "+strings.ToLower(f.Field())+" failed "+f.Tag()+" check")
		}
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return nil
}

// UpdateContact replaces name and phone
func (e *Employee) UpdateContact(name, phone string) error {
	e.Name = strings.TrimSpace(name)
	e.Phone = strings.TrimSpace(phone)
	if err := e.Validate(); err != nil {
		return err
	}
	e.Touch()
	return nil
}

// Deactivate hides the employee from lookups
func (e *Employee) Deactivate() {
	e.Active = false
	e.Touch()
}

// Activate makes the employee visible to lookups again
func (e *Employee) Activate() {
	e.Active = true
	e.Touch()
}

// Contact returns the lookup view of the employee
func (e *Employee) Contact() Contact {
	return Contact{Name: e.Name, Phone: e.Phone}
}
