package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled bool
	// DBSystem is reported as db.name on every span, e.g. "postgresql" or "sqlite"
	DBSystem string
	// WithQueryVariables includes bound values, phone numbers among them, in db.statement
	WithQueryVariables bool
}

// RegisterDBTracing installs the otelgorm plugin so each statement becomes a child span
// of the request that issued it.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem), otelgorm.WithoutMetrics()}
	if !cfg.WithQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// A miss is the normal "Código não encontrado" path, not a failure.
	if err := db.Callback().Query().After("gorm:query").Before("otel:after_query").Register("etiqueta:record_found", markRecordFound); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.String("db_system", cfg.DBSystem))
	return nil
}

func markRecordFound(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Bool("db.record_found", !errors.Is(db.Error, gorm.ErrRecordNotFound)))
}
