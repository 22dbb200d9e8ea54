package printing

import (
	"github.com/etiqueta/backend/internal/domain/label"
	"github.com/go-pdf/fpdf"
)

// Color is an RGB triple in the 0-255 range
type Color struct {
	R, G, B int
}

var (
	ColorBlack     = Color{0, 0, 0}
	ColorWhite     = Color{255, 255, 255}
	ColorLightGray = Color{0xE0, 0xE0, 0xE0}
)

// Font selects one of the PDF core fonts
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Core font shorthands
func Regular(size float64) Font { return Font{Family: "Helvetica", Size: size} }
func Bold(size float64) Font    { return Font{Family: "Helvetica", Style: "B", Size: size} }

// Style is the complete mutable drawing state of a Canvas
type Style struct {
	LineWidth float64
	FillColor Color
	TextColor Color
	Font      Font
}

// DefaultStyle is black on white, 1pt lines, regular 12pt text
func DefaultStyle() Style {
	return Style{
		LineWidth: 1,
		FillColor: ColorBlack,
		TextColor: ColorBlack,
		Font:      Regular(12),
	}
}

func (s Style) WithLineWidth(w float64) Style { s.LineWidth = w; return s }
func (s Style) WithFill(c Color) Style        { s.FillColor = c; return s }
func (s Style) WithText(c Color) Style        { s.TextColor = c; return s }
func (s Style) WithFont(f Font) Style         { s.Font = f; return s }

// lineHeightFactor approximates the Helvetica ascent+descent+gap per point of size
const lineHeightFactor = 1.156

// LineHeight returns the height of one text line in the style's font
func (s Style) LineHeight() float64 {
	return s.Font.Size * lineHeightFactor
}

// Canvas draws on a single fpdf page and tracks the active Style.
// Style changes made through WithStyle are always undone when the callback returns.
type Canvas struct {
	pdf   *fpdf.Fpdf
	style Style
	w, h  float64
	y     float64
}

// NewCanvas wraps pdf and applies base as the initial style
func NewCanvas(pdf *fpdf.Fpdf, base Style) *Canvas {
	w, h := pdf.GetPageSize()
	c := &Canvas{pdf: pdf, w: w, h: h}
	c.apply(base)
	return c
}

// Width returns the page width
func (c *Canvas) Width() float64 { return c.w }

// Height returns the page height
func (c *Canvas) Height() float64 { return c.h }

// Style returns the active style
func (c *Canvas) Style() Style { return c.style }

// Y returns the vertical cursor left by the last text call
func (c *Canvas) Y() float64 { return c.y }

// MoveDown advances the text cursor by n lines of the active font
func (c *Canvas) MoveDown(n float64) {
	c.y += n * c.style.LineHeight()
}

// WithStyle applies s, runs fn and restores the previous style, even if fn panics
func (c *Canvas) WithStyle(s Style, fn func()) {
	prev := c.style
	c.apply(s)
	defer c.apply(prev)
	fn()
}

// SetStyle replaces the active style without restoring it later
func (c *Canvas) SetStyle(s Style) {
	c.apply(s)
}

func (c *Canvas) apply(s Style) {
	c.pdf.SetLineWidth(s.LineWidth)
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetFillColor(s.FillColor.R, s.FillColor.G, s.FillColor.B)
	c.pdf.SetTextColor(s.TextColor.R, s.TextColor.G, s.TextColor.B)
	c.pdf.SetFont(s.Font.Family, s.Font.Style, s.Font.Size)
	c.style = s
}

// StrokeRect outlines a rectangle with the active line width
func (c *Canvas) StrokeRect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "D")
}

// FillRect paints a rectangle with the active fill color
func (c *Canvas) FillRect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "F")
}

// Line strokes a straight segment with the active line width
func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

// Text writes txt in a box of width w starting at (x, y), wrapping as needed.
// align is "L", "C" or "R". The cursor is left below the text.
func (c *Canvas) Text(x, y, w float64, txt, align string) {
	c.pdf.SetXY(x, y)
	c.pdf.MultiCell(w, c.style.LineHeight(), encodeText(txt), "", align, false)
	c.y = c.pdf.GetY()
}

// TextLines writes each line at x starting at y, adding gap points after every line
func (c *Canvas) TextLines(x, y, w float64, lines []string, gap float64) {
	c.y = y
	for _, line := range lines {
		c.Text(x, c.y, w, line, "L")
		c.y += gap
	}
}

// Image places a registered image at (x, y) scaled to width w, keeping its aspect ratio
func (c *Canvas) Image(name string, x, y, w float64) {
	c.pdf.ImageOptions(name, x, y, w, 0, false, fpdf.ImageOptions{}, 0, "")
}

// DrawOuterBorder strokes the page frame inset from every edge
func DrawOuterBorder(c *Canvas) {
	c.WithStyle(c.Style().WithLineWidth(label.RuleLineWidth), func() {
		c.StrokeRect(label.BorderInset, label.BorderInset, c.Width()-2*label.BorderInset, c.Height()-2*label.BorderInset)
	})
}

// DrawHorizontalRule strokes a full-width separator at y
func DrawHorizontalRule(c *Canvas, y float64) {
	c.WithStyle(c.Style().WithLineWidth(label.RuleLineWidth), func() {
		c.Line(label.BorderInset, y, c.Width()-label.BorderInset, y)
	})
}

// DrawInvertedTitleBanner paints a black band at y and centers text on it in white bold
func DrawInvertedTitleBanner(c *Canvas, text string, y float64) {
	w := c.Width() - 2*label.ContentMargin
	c.WithStyle(c.Style().WithFill(ColorBlack), func() {
		c.FillRect(label.ContentMargin, y, w, label.TitleBannerH)
	})
	c.WithStyle(c.Style().WithText(ColorWhite).WithFont(Bold(12)), func() {
		c.Text(label.ContentMargin, y+5, w, text, "C")
	})
}
