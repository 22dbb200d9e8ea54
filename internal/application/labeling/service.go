// Package labeling turns submitted form data into a rendered shipping label.
package labeling

import (
	"context"
	"time"

	"github.com/etiqueta/backend/internal/infrastructure/logger"
	infra "github.com/etiqueta/backend/internal/infrastructure/printing"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds label generation settings
type Config struct {
	// LogoPath is the header image; a missing file renders a placeholder
	LogoPath string
	// RenderTimeout bounds one render; zero means no deadline
	RenderTimeout time.Duration
}

// Service renders labels and optionally archives a copy
type Service struct {
	renderer infra.Renderer
	archive  infra.LabelArchive
	metrics  *telemetry.Metrics
	config   Config
	clock    func() time.Time
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithArchive stores a copy of every rendered label
func WithArchive(archive infra.LabelArchive) Option {
	return func(s *Service) {
		s.archive = archive
	}
}

// WithMetrics records render outcomes
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the archive timestamp source
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a new Service
func NewService(renderer infra.Renderer, cfg Config, opts ...Option) *Service {
	s := &Service{
		renderer: renderer,
		config:   cfg,
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate renders the label described by req.
// The returned PDF is complete; on error no data is returned.
func (s *Service) Generate(ctx context.Context, req GenerateLabelRequest) (*GenerateLabelResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LabelService", "Generate",
		telemetry.WithAttribute(telemetry.SpanAttrBarcodeLength, len(req.BarcodeText)))
	defer span.End()

	if s.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RenderTimeout)
		defer cancel()
	}

	rec := req.ToRecord(s.config.LogoPath)

	start := time.Now()
	result, err := s.renderer.Render(ctx, rec)
	if err != nil {
		code := infra.ErrorCode(err)
		s.metrics.RecordLabelRender(ctx, outcomeFor(code), time.Since(start), 0)
		telemetry.SetAttributes(span, telemetry.SpanAttrErrorCode, code)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordLabelRender(ctx, telemetry.OutcomeSuccess, result.RenderDuration, len(result.PDFData))
	telemetry.SetAttributes(span, telemetry.SpanAttrPDFBytes, len(result.PDFData))

	resp := &GenerateLabelResponse{
		ID:       uuid.New(),
		Filename: DownloadFilename,
		PDFData:  result.PDFData,
	}

	if s.archive != nil {
		resp.ArchivePath = s.store(ctx, resp, req.BarcodeText)
		if resp.ArchivePath != "" {
			telemetry.SetAttributes(span, telemetry.SpanAttrArchivePath, resp.ArchivePath)
		}
	}

	telemetry.SetOK(span)
	return resp, nil
}

// store archives the label and returns its path, or "" on failure.
// The download is served regardless of the archive outcome.
func (s *Service) store(ctx context.Context, resp *GenerateLabelResponse, barcodeText string) string {
	log := logger.L(ctx, s.logger)

	// The render deadline must not cut the archive upload short
	storeCtx := context.WithoutCancel(ctx)
	if s.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(storeCtx, s.config.RenderTimeout)
		defer cancel()
	}

	stored, err := s.archive.Store(storeCtx, &infra.ArchiveRequest{
		ID:          resp.ID,
		BarcodeText: barcodeText,
		CreatedAt:   s.clock(),
		PDFData:     resp.PDFData,
	})
	if err != nil {
		s.metrics.RecordArchiveFailure(ctx)
		log.Warn("Falha ao arquivar etiqueta",
			zap.String("label_id", resp.ID.String()),
			zap.Error(err))
		return ""
	}

	log.Debug("label archived",
		zap.String("label_id", resp.ID.String()),
		zap.String("path", stored.Path),
		zap.Int64("size", stored.Size))
	return stored.Path
}

func outcomeFor(code string) string {
	switch code {
	case infra.ErrCodeBarcodeFailed, infra.ErrCodeInvalidRequest:
		return telemetry.OutcomeInvalid
	default:
		return telemetry.OutcomeFailure
	}
}
