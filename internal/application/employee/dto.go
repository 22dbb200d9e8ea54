package employee

import (
	"time"

	"github.com/etiqueta/backend/internal/domain/employee"
)

// UpsertEmployeeRequest represents a request to create or update an employee
type UpsertEmployeeRequest struct {
	Name  string `json:"nome" binding:"required,max=200"`
	Phone string `json:"telefone" binding:"max=50"`
	// Active defaults to true; false hides the employee from lookups
	Active *bool `json:"ativo"`
}

// EmployeeResponse represents an employee in API responses
type EmployeeResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"codigo"`
	Name      string    `json:"nome"`
	Phone     string    `json:"telefone"`
	Active    bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toEmployeeResponse(e *employee.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:        e.ID.String(),
		Code:      e.Code,
		Name:      e.Name,
		Phone:     e.Phone,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
