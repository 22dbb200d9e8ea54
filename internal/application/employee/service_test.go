package employee_test

import (
	"context"
	"errors"
	"testing"

	appemployee "github.com/etiqueta/backend/internal/application/employee"
	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry/metrictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindActiveByCode(ctx context.Context, code string) (*employee.Employee, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByCode(ctx context.Context, code string) (*employee.Employee, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Save(ctx context.Context, e *employee.Employee) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func lookupCount(rec *metrictest.Recorder, outcome string) int64 {
	return rec.Count("employee_lookup_total", telemetry.AttrOutcome.String(outcome))
}

func boolPtr(b bool) *bool { return &b }

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		rec := metrictest.New(t)
		e, err := employee.New("E001", "Ana", "555")
		require.NoError(t, err)
		repo.On("FindActiveByCode", mock.Anything, "E001").Return(e, nil)

		svc := appemployee.NewService(repo, rec.Metrics, zaptest.NewLogger(t))
		contact, err := svc.Lookup(ctx, "  E001 ")

		require.NoError(t, err)
		assert.Equal(t, &employee.Contact{Name: "Ana", Phone: "555"}, contact)
		assert.Equal(t, int64(1), lookupCount(rec, telemetry.OutcomeSuccess))
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		rec := metrictest.New(t)
		repo.On("FindActiveByCode", mock.Anything, "999").Return(nil, shared.ErrNotFound)

		svc := appemployee.NewService(repo, rec.Metrics, nil)
		_, err := svc.Lookup(ctx, "999")

		assert.ErrorIs(t, err, appemployee.ErrEmployeeNotFound)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, int64(1), lookupCount(rec, telemetry.OutcomeNotFound))
	})

	t.Run("blank code skips the store", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		svc := appemployee.NewService(repo, nil, nil)

		_, err := svc.Lookup(ctx, "   ")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "FindActiveByCode", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		repo.On("FindActiveByCode", mock.Anything, "E1").Return(nil, errors.New("connection refused"))

		svc := appemployee.NewService(repo, nil, nil)
		_, err := svc.Lookup(ctx, "E1")

		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("creates", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		repo.On("FindByCode", mock.Anything, "E002").Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(e *employee.Employee) bool {
			return e.Code == "E002" && e.Name == "Bruno" && e.Active
		})).Return(nil)

		svc := appemployee.NewService(repo, nil, zaptest.NewLogger(t))
		resp, created, err := svc.Upsert(ctx, " E002 ", appemployee.UpsertEmployeeRequest{Name: "Bruno", Phone: "777"})

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "E002", resp.Code)
		assert.Equal(t, "777", resp.Phone)
		assert.True(t, resp.Active)
		repo.AssertExpectations(t)
	})

	t.Run("updates and deactivates", func(t *testing.T) {
		existing, err := employee.New("E003", "Carla", "1")
		require.NoError(t, err)
		id := existing.ID

		repo := new(MockEmployeeRepository)
		repo.On("FindByCode", mock.Anything, "E003").Return(existing, nil)
		repo.On("Save", mock.Anything, existing).Return(nil)

		svc := appemployee.NewService(repo, nil, nil)
		resp, created, err := svc.Upsert(ctx, "E003",
			appemployee.UpsertEmployeeRequest{Name: "Carla Souza", Phone: "2", Active: boolPtr(false)})

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, id.String(), resp.ID)
		assert.Equal(t, "Carla Souza", resp.Name)
		assert.False(t, resp.Active)
	})

	t.Run("rejects invalid contact", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		repo.On("FindByCode", mock.Anything, "E004").Return(nil, shared.ErrNotFound)

		svc := appemployee.NewService(repo, nil, nil)
		_, _, err := svc.Upsert(ctx, "E004", appemployee.UpsertEmployeeRequest{Name: ""})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		repo.On("FindByCode", mock.Anything, "E005").Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))

		svc := appemployee.NewService(repo, nil, nil)
		_, _, err := svc.Upsert(ctx, "E005", appemployee.UpsertEmployeeRequest{Name: "Davi"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save employee")
	})
}
