package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etiqueta/backend/internal/domain/label"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const barcodeImageName = "barcode.png"

// LabelRenderer draws the fixed shipping label layout with go-pdf/fpdf.
// Every call builds its own document; a LabelRenderer is safe for concurrent use.
type LabelRenderer struct {
	barcodes    BarcodeGenerator
	clock       func() time.Time
	compression bool
	logger      *zap.Logger
}

// Option configures a LabelRenderer
type Option func(*LabelRenderer)

// WithBarcodeGenerator overrides the Code 128 generator
func WithBarcodeGenerator(g BarcodeGenerator) Option {
	return func(r *LabelRenderer) {
		if g != nil {
			r.barcodes = g
		}
	}
}

// WithClock sets the source of the document creation date
func WithClock(clock func() time.Time) Option {
	return func(r *LabelRenderer) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithCompression toggles content stream compression
func WithCompression(enabled bool) Option {
	return func(r *LabelRenderer) {
		r.compression = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *LabelRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewLabelRenderer creates a renderer with compression on and the wall clock
func NewLabelRenderer(opts ...Option) *LabelRenderer {
	r := &LabelRenderer{
		barcodes:    NewCode128Generator(),
		clock:       time.Now,
		compression: true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws rec on a single page and returns the finished document.
// The PDF is produced in memory; nothing is returned unless every step succeeded.
func (r *LabelRenderer) Render(ctx context.Context, rec *label.Record) (*RenderResult, error) {
	if rec == nil {
		return nil, NewRenderError(ErrCodeInvalidRequest, "label record is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "render cancelled", err)
	}

	start := time.Now()

	// Barcode first: it is the only step that rejects input
	bc, err := r.barcodes.Generate(rec.BarcodeText)
	if err != nil {
		return nil, err
	}

	pdf := r.newDocument()
	c := NewCanvas(pdf, DefaultStyle())

	DrawOuterBorder(c)
	DrawHorizontalRule(c, label.HeaderRuleY)
	DrawHorizontalRule(c, label.RecipientRuleY)
	DrawHorizontalRule(c, label.BarcodeRuleY)

	if err := r.drawHeader(c, pdf, rec); err != nil {
		return nil, err
	}
	r.drawRecipient(c, rec.Recipient)
	if err := r.drawBarcode(c, pdf, rec.BarcodeText, bc); err != nil {
		return nil, err
	}
	r.drawSender(c, rec.Sender)

	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "render cancelled", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to produce PDF", err)
	}

	result := &RenderResult{
		PDFData:        buf.Bytes(),
		PageCount:      pdf.PageCount(),
		RenderDuration: time.Since(start),
	}

	r.logger.Debug("label rendered",
		zap.Int("size", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration))

	return result, nil
}

func (r *LabelRenderer) newDocument() *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: label.PageWidth, Ht: label.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compression)
	pdf.SetCatalogSort(true)

	now := r.clock()
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle("Etiqueta", true)

	pdf.AddPage()
	return pdf
}

func (r *LabelRenderer) drawHeader(c *Canvas, pdf *fpdf.Fpdf, rec *label.Record) error {
	m := label.ContentMargin

	drawn, err := r.drawLogo(c, pdf, rec.LogoPath)
	if err != nil {
		return err
	}
	if !drawn {
		c.WithStyle(c.Style().WithFill(ColorLightGray), func() {
			c.FillRect(m, m, label.LogoSize, label.LogoSize)
		})
		c.WithStyle(c.Style().WithFont(Regular(8)), func() {
			c.Text(m+25, m+30, label.LogoSize-25, label.CaptionLogo, "L")
		})
	}

	x := m + 90
	w := c.Width() - x - m
	c.SetStyle(c.Style().WithFont(Bold(11)))
	c.Text(x, m+5, w, label.CaptionCourier, "L")
	c.SetStyle(c.Style().WithFont(Regular(10)))
	c.Text(x, c.Y(), w, rec.Courier.Line(), "L")
	c.MoveDown(0.8)
	c.SetStyle(c.Style().WithFont(Bold(11)))
	c.Text(x, c.Y(), w, label.CaptionCollector, "L")
	c.SetStyle(c.Style().WithFont(Regular(10)))
	c.Text(x, c.Y(), w, rec.Collector.Line(), "L")
	return nil
}

// drawLogo places the configured logo. A missing file is not an error and
// reports drawn=false so the placeholder is used instead.
func (r *LabelRenderer) drawLogo(c *Canvas, pdf *fpdf.Fpdf, path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("logo not accessible, using placeholder",
				zap.String("path", path), zap.Error(err))
		}
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, NewRenderError(ErrCodeLogoFailed, "failed to read logo", err)
	}

	pdf.RegisterImageOptionsReader(path, fpdf.ImageOptions{ImageType: imageType(path)}, bytes.NewReader(data))
	if pdf.Err() {
		return false, NewRenderError(ErrCodeLogoFailed, fmt.Sprintf("failed to decode logo %s", path), pdf.Error())
	}
	c.Image(path, label.ContentMargin, label.ContentMargin, label.LogoSize)
	return true, nil
}

func (r *LabelRenderer) drawRecipient(c *Canvas, p label.Party) {
	m := label.ContentMargin
	w := c.Width() - 2*m

	DrawInvertedTitleBanner(c, label.CaptionRecipient, label.RecipientTitleY)

	c.SetStyle(c.Style().WithFont(Bold(12)))
	c.Text(m, label.RecipientBodyY, w, p.Name, "L")
	c.SetStyle(c.Style().WithFont(Regular(11)))
	c.TextLines(m, c.Y(), w, p.AddressLines(), 2)
}

func (r *LabelRenderer) drawBarcode(c *Canvas, pdf *fpdf.Fpdf, text string, bc *BarcodeImage) error {
	c.SetStyle(c.Style().WithFont(Bold(14)))
	c.Text(0, label.BarcodeCaptionY, c.Width(), text, "C")

	pdf.RegisterImageOptionsReader(barcodeImageName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(bc.PNG))
	if pdf.Err() {
		return NewRenderError(ErrCodeBarcodeFailed, "failed to embed barcode image", pdf.Error())
	}
	c.Image(barcodeImageName, (c.Width()-label.BarcodeWidth)/2, label.BarcodeImageY, label.BarcodeWidth)
	return nil
}

func (r *LabelRenderer) drawSender(c *Canvas, p label.Party) {
	m := label.ContentMargin
	w := c.Width() - 2*m

	c.SetStyle(c.Style().WithFont(Bold(12)))
	c.Text(m, label.SenderTitleY, w, label.CaptionSender, "L")
	c.MoveDown(0.5)
	c.SetStyle(c.Style().WithFont(Regular(9)))
	c.Text(m, c.Y(), w, p.Name, "L")
	c.TextLines(m, c.Y(), w, p.AddressLines(), 2)
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}

// Ensure LabelRenderer implements Renderer
var _ Renderer = (*LabelRenderer)(nil)
