package handler

import (
	"context"
	"errors"
	"net/http"

	appemployee "github.com/etiqueta/backend/internal/application/employee"
	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EmployeeService looks up and maintains employees
type EmployeeService interface {
	Lookup(ctx context.Context, code string) (*employee.Contact, error)
	Upsert(ctx context.Context, code string, req appemployee.UpsertEmployeeRequest) (*appemployee.EmployeeResponse, bool, error)
}

// EmployeeHandler serves courier and collector lookups
type EmployeeHandler struct {
	BaseHandler
	service EmployeeService
	logger  *zap.Logger
}

// NewEmployeeHandler creates an EmployeeHandler
func NewEmployeeHandler(service EmployeeService, logger *zap.Logger) *EmployeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeHandler{
		service: service,
		logger:  logger,
	}
}

// GetByCode handles GET /entregador/:code.
// A match answers the bare {"nome","telefone"} object read by the form script.
func (h *EmployeeHandler) GetByCode(c *gin.Context) {
	contact, err := h.service.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			logger.L(c.Request.Context(), h.logger).Error("employee lookup failed",
				zap.String("code", c.Param("code")),
				zap.Error(err))
		}
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Upsert handles PUT /entregador/:code with a JSON {nome, telefone, ativo} body.
// Answers 201 when the employee was created and 200 when it was updated.
func (h *EmployeeHandler) Upsert(c *gin.Context) {
	var req appemployee.UpsertEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, created, err := h.service.Upsert(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}
