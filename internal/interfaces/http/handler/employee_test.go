package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appemployee "github.com/etiqueta/backend/internal/application/employee"
	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"github.com/etiqueta/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEmployeeService struct {
	mock.Mock
}

func (m *MockEmployeeService) Lookup(ctx context.Context, code string) (*employee.Contact, error) {
	args := m.Called(ctx, code)
	if c := args.Get(0); c != nil {
		return c.(*employee.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeService) Upsert(ctx context.Context, code string, req appemployee.UpsertEmployeeRequest) (*appemployee.EmployeeResponse, bool, error) {
	args := m.Called(ctx, code, req)
	if r := args.Get(0); r != nil {
		return r.(*appemployee.EmployeeResponse), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func newEmployeeRouter(svc EmployeeService) *gin.Engine {
	h := NewEmployeeHandler(svc, nil)
	router := gin.New()
	router.GET("/api/entregador/:code", h.GetByCode)
	router.PUT("/api/entregador/:code", h.Upsert)
	return router
}

func TestEmployeeHandler_GetByCode(t *testing.T) {
	t.Run("answers bare contact", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Lookup", mock.Anything, "E001").Return(&employee.Contact{Name: "Ana", Phone: "555"}, nil)

		w := httptest.NewRecorder()
		newEmployeeRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/entregador/E001", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"nome":"Ana","telefone":"555"}`, w.Body.String())
	})

	t.Run("unknown code is 404 envelope", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Lookup", mock.Anything, "999").Return(nil, appemployee.ErrEmployeeNotFound)

		w := httptest.NewRecorder()
		newEmployeeRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/entregador/999", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("store failure is 500", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Lookup", mock.Anything, "E1").Return(nil, errors.New("connection refused"))

		w := httptest.NewRecorder()
		newEmployeeRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/entregador/E1", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestEmployeeHandler_Upsert(t *testing.T) {
	put := func(router *gin.Engine, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/entregador/E001", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Upsert", mock.Anything, "E001", appemployee.UpsertEmployeeRequest{Name: "Ana", Phone: "555"}).
			Return(&appemployee.EmployeeResponse{ID: uuid.New().String(), Code: "E001", Name: "Ana", Phone: "555", Active: true}, true, nil)

		w := put(newEmployeeRouter(svc), `{"nome":"Ana","telefone":"555"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success bool                         `json:"success"`
			Data    appemployee.EmployeeResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "E001", resp.Data.Code)
		assert.True(t, resp.Data.Active)
	})

	t.Run("updated", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Upsert", mock.Anything, "E001", mock.Anything).
			Return(&appemployee.EmployeeResponse{Code: "E001"}, false, nil)

		assert.Equal(t, http.StatusOK, put(newEmployeeRouter(svc), `{"nome":"Ana"}`).Code)
	})

	t.Run("missing name is a validation error", func(t *testing.T) {
		svc := new(MockEmployeeService)

		w := put(newEmployeeRouter(svc), `{"telefone":"555"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		svc.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("domain rejection is 400", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Upsert", mock.Anything, "E001", mock.Anything).
			Return(nil, false, shared.NewDomainError("INVALID_INPUT", "employee code failed max check"))

		w := put(newEmployeeRouter(svc), `{"nome":"Ana"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
	})
}
