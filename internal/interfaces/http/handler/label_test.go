package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etiqueta/backend/internal/application/labeling"
	"github.com/etiqueta/backend/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockLabelGenerator struct {
	mock.Mock
}

func (m *MockLabelGenerator) Generate(ctx context.Context, req labeling.GenerateLabelRequest) (*labeling.GenerateLabelResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*labeling.GenerateLabelResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func newLabelRouter(h *LabelHandler) *gin.Engine {
	router := gin.New()
	router.POST("/gerar-etiqueta", h.Generate)
	return router
}

func postForm(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/gerar-etiqueta", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLabelHandler_Generate(t *testing.T) {
	t.Run("binds form and streams pdf", func(t *testing.T) {
		gen := new(MockLabelGenerator)
		id := uuid.New()
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req labeling.GenerateLabelRequest) bool {
			return req.CourierName == "Ana" &&
				req.RecipientPostalCode == "01001-000" &&
				req.BarcodeText == "BR123" &&
				req.SenderName == ""
		})).Return(&labeling.GenerateLabelResponse{
			ID:       id,
			Filename: labeling.DownloadFilename,
			PDFData:  []byte("%PDF-1.3 fake"),
		}, nil)

		w := postForm(newLabelRouter(NewLabelHandler(gen, nil)), url.Values{
			"entregador_nome": {"Ana"},
			"dest_cep":        {"01001-000"},
			"barcode_text":    {"BR123"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=etiqueta.pdf", w.Header().Get("Content-Disposition"))
		assert.Equal(t, id.String(), w.Header().Get(LabelIDHeader))
		assert.Equal(t, "%PDF-1.3 fake", w.Body.String())
		gen.AssertExpectations(t)
	})

	t.Run("render failure answers plain text and logs", func(t *testing.T) {
		gen := new(MockLabelGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).
			Return(nil, printing.NewRenderError(printing.ErrCodeBarcodeFailed, "barcode", errors.New("empty")))
		core, logs := observer.New(zapcore.ErrorLevel)

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-1")
			c.Next()
		})
		router.POST("/gerar-etiqueta", NewLabelHandler(gen, zap.New(core)).Generate)

		w := postForm(router, url.Values{})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, GenerateErrorMessage, w.Body.String())
		assert.Empty(t, w.Header().Get("Content-Disposition"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "Erro ao gerar etiqueta", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, printing.ErrCodeBarcodeFailed, fields["error_code"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "/gerar-etiqueta", fields["route"])
	})

	t.Run("accepts multipart forms", func(t *testing.T) {
		gen := new(MockLabelGenerator)
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req labeling.GenerateLabelRequest) bool {
			return req.CollectorCode == "C9"
		})).Return(&labeling.GenerateLabelResponse{ID: uuid.New(), Filename: labeling.DownloadFilename, PDFData: []byte("%PDF")}, nil)

		body := "--b\r\nContent-Disposition: form-data; name=\"coletor_id\"\r\n\r\nC9\r\n--b--\r\n"
		req := httptest.NewRequest(http.MethodPost, "/gerar-etiqueta", strings.NewReader(body))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
		w := httptest.NewRecorder()
		newLabelRouter(NewLabelHandler(gen, nil)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		gen.AssertExpectations(t)
	})
}

func TestLabelHandler_GenerateRealPDF(t *testing.T) {
	svc := labeling.NewService(
		printing.NewLabelRenderer(),
		labeling.Config{LogoPath: filepath.Join(t.TempDir(), "missing.png"), RenderTimeout: 5 * time.Second},
	)

	w := postForm(newLabelRouter(NewLabelHandler(svc, nil)), url.Values{
		"entregador_nome": {"José"},
		"dest_nome":       {"Maria da Conceição"},
		"barcode_text":    {"BR0001"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}
