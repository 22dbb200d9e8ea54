package printing

import (
	"context"
	"errors"
	"time"

	"github.com/etiqueta/backend/internal/domain/label"
)

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// Renderer renders a label record to a PDF document
type Renderer interface {
	// Render draws the record and returns the complete document.
	// No partial output is returned on failure.
	Render(ctx context.Context, rec *label.Record) (*RenderResult, error)
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeBarcodeFailed  = "BARCODE_FAILED"
	ErrCodeLogoFailed     = "LOGO_FAILED"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode extracts the RenderError code from err, or RENDER_FAILED
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeRenderFailed
}
