package handler

import (
	"errors"
	"net/http"

	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/internal/infrastructure/postal"
	"github.com/etiqueta/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostalHandler proxies the postal code directory in its own wire format
type PostalHandler struct {
	BaseHandler
	lookup postal.Lookup
	logger *zap.Logger
}

// NewPostalHandler creates a PostalHandler
func NewPostalHandler(lookup postal.Lookup, logger *zap.Logger) *PostalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostalHandler{
		lookup: lookup,
		logger: logger,
	}
}

// Lookup handles GET /cep/:cep/json.
// Unknown codes answer 200 {"erro": true} like the directory itself.
func (h *PostalHandler) Lookup(c *gin.Context) {
	digits := postal.NormalizePostalCode(c.Param("cep"))
	if !postal.IsValidPostalCode(digits) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidPostalCode, "Postal code must have 8 digits")
		return
	}

	addr, err := h.lookup.Lookup(c.Request.Context(), digits)
	switch {
	case errors.Is(err, postal.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"erro": true})
	case err != nil:
		logger.L(c.Request.Context(), h.logger).Warn("postal lookup failed",
			zap.String("cep", digits),
			zap.Error(err))
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstream, "Postal code directory unavailable")
	default:
		c.JSON(http.StatusOK, postal.PayloadFor(addr))
	}
}
