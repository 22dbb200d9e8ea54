package handler

import (
	"context"
	"net/http"

	"github.com/etiqueta/backend/internal/application/labeling"
	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// GenerateErrorMessage is the plain-text body of a failed label request
const GenerateErrorMessage = "Ocorreu um erro ao gerar a etiqueta."

// LabelIDHeader carries the ID of the generated label
const LabelIDHeader = "X-Label-ID"

// LabelGenerator renders labels
type LabelGenerator interface {
	Generate(ctx context.Context, req labeling.GenerateLabelRequest) (*labeling.GenerateLabelResponse, error)
}

// LabelHandler serves the label form submission
type LabelHandler struct {
	BaseHandler
	generator LabelGenerator
	logger    *zap.Logger
}

// NewLabelHandler creates a LabelHandler
func NewLabelHandler(generator LabelGenerator, logger *zap.Logger) *LabelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelHandler{
		generator: generator,
		logger:    logger,
	}
}

// Generate handles POST /gerar-etiqueta.
// Form fields are optional; absent ones render blank. The PDF is written
// in one piece only after rendering succeeded.
func (h *LabelHandler) Generate(c *gin.Context) {
	var req labeling.GenerateLabelRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		h.fail(c, printing.ErrCodeInvalidRequest, err)
		return
	}

	resp, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, printing.ErrorCode(err), err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+resp.Filename)
	c.Header(LabelIDHeader, resp.ID.String())
	c.Data(http.StatusOK, "application/pdf", resp.PDFData)
}

func (h *LabelHandler) fail(c *gin.Context, code string, err error) {
	logger.WithTraceContext(c.Request.Context(), h.logger).Error("Erro ao gerar etiqueta",
		zap.String("error_code", code),
		zap.String("request_id", getRequestID(c)),
		zap.String("route", c.FullPath()),
		zap.Error(err))
	c.String(http.StatusInternalServerError, GenerateErrorMessage)
}
