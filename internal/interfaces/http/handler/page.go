package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageHandler serves the label form
type PageHandler struct {
	tmpl *template.Template
	data web.PageData
}

// NewPageHandler parses the embedded form page
func NewPageHandler(data web.PageData) (*PageHandler, error) {
	tmpl, err := web.IndexTemplate()
	if err != nil {
		return nil, err
	}
	return &PageHandler{tmpl: tmpl, data: data}, nil
}

// Index renders the form
func (h *PageHandler) Index(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.data); err != nil {
		logger.GetGinLogger(c).Error("Failed to render form page", zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
