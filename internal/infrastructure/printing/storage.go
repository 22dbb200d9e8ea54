package printing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LabelArchive keeps copies of generated labels
type LabelArchive interface {
	// Store saves a PDF and returns where it was put
	Store(ctx context.Context, req *ArchiveRequest) (*ArchiveResult, error)
}

// ArchiveRequest contains the parameters for archiving a label
type ArchiveRequest struct {
	// ID identifies the label; used as the file name
	ID uuid.UUID
	// BarcodeText is recorded alongside the file where the backend supports metadata
	BarcodeText string
	// CreatedAt selects the year/month partition; zero means now
	CreatedAt time.Time
	// PDFData is the raw PDF content
	PDFData []byte
}

// ArchiveResult contains the result of archiving a label
type ArchiveResult struct {
	// Path is the storage key (relative to the archive root)
	Path string
	// Size is the file size in bytes
	Size int64
}

// Validate checks the request fields shared by every archive backend
func (r *ArchiveRequest) Validate() error {
	if r == nil {
		return NewRenderError(ErrCodeStorageFailed, "archive request is nil", nil)
	}
	if r.ID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "label ID is required", nil)
	}
	if len(r.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

// RelativePath returns {yyyy}/{mm}/{id}.pdf for the request
func (r *ArchiveRequest) RelativePath() string {
	ts := r.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("%d/%02d/%s.pdf", ts.Year(), ts.Month(), r.ID.String())
}

// FileSystemArchiveConfig contains configuration for file system archiving
type FileSystemArchiveConfig struct {
	// BasePath is the root directory for archived labels
	// Default: ./data/labels
	BasePath string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemArchive stores labels on the local file system
type FileSystemArchive struct {
	config *FileSystemArchiveConfig
	logger *zap.Logger
}

// NewFileSystemArchive creates a new file system based label archive
func NewFileSystemArchive(config *FileSystemArchiveConfig) (*FileSystemArchive, error) {
	if config == nil {
		config = &FileSystemArchiveConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "./data/labels"
	}

	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create archive directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemArchive{
		config: config,
		logger: logger,
	}, nil
}

// Store writes the PDF to {base}/{yyyy}/{mm}/{id}.pdf
func (s *FileSystemArchive) Store(ctx context.Context, req *ArchiveRequest) (*ArchiveResult, error) {
	select {
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	relativePath := req.RelativePath()
	filePath := filepath.Join(s.config.BasePath, filepath.FromSlash(relativePath))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := os.WriteFile(filePath, req.PDFData, 0644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	s.logger.Info("label archived",
		zap.String("path", filePath),
		zap.Int("size", len(req.PDFData)))

	return &ArchiveResult{
		Path: relativePath,
		Size: int64(len(req.PDFData)),
	}, nil
}

// NopArchive discards labels
type NopArchive struct{}

// Store implements LabelArchive
func (NopArchive) Store(_ context.Context, req *ArchiveRequest) (*ArchiveResult, error) {
	return &ArchiveResult{Size: int64(len(req.PDFData))}, nil
}

// Ensure implementations satisfy LabelArchive
var (
	_ LabelArchive = (*FileSystemArchive)(nil)
	_ LabelArchive = NopArchive{}
)
