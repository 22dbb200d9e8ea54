package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etiqueta/backend/internal/infrastructure/postal"
	"github.com/etiqueta/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type postalLookupFunc func(ctx context.Context, code string) (*postal.Address, error)

func (f postalLookupFunc) Lookup(ctx context.Context, code string) (*postal.Address, error) {
	return f(ctx, code)
}

func getPostal(lookup postal.Lookup, path string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/api/cep/:cep/json", NewPostalHandler(lookup, nil).Lookup)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPostalHandler_Lookup(t *testing.T) {
	t.Run("answers directory payload", func(t *testing.T) {
		var requested string
		w := getPostal(postalLookupFunc(func(_ context.Context, code string) (*postal.Address, error) {
			requested = code
			return &postal.Address{StreetLine: "Praça da Sé", NeighborhoodLine: "Sé", City: "São Paulo", StateCode: "SP"}, nil
		}), "/api/cep/01001-000/json")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "01001000", requested)
		assert.JSONEq(t, `{"logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`, w.Body.String())
	})

	t.Run("unknown code answers erro", func(t *testing.T) {
		w := getPostal(postalLookupFunc(func(context.Context, string) (*postal.Address, error) {
			return nil, fmt.Errorf("lookup 99999999: %w", postal.ErrNotFound)
		}), "/api/cep/99999999/json")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"erro":true}`, w.Body.String())
	})

	t.Run("invalid code is 400 without lookup", func(t *testing.T) {
		w := getPostal(postalLookupFunc(func(context.Context, string) (*postal.Address, error) {
			t.Fatal("unexpected lookup")
			return nil, nil
		}), "/api/cep/1234/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidPostalCode, decodeResponse(t, w).Error.Code)
	})

	t.Run("upstream failure is 502", func(t *testing.T) {
		w := getPostal(postalLookupFunc(func(context.Context, string) (*postal.Address, error) {
			return nil, errors.New("circuit breaker is open")
		}), "/api/cep/01001000/json")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, dto.ErrCodeUpstream, decodeResponse(t, w).Error.Code)
	})
}
