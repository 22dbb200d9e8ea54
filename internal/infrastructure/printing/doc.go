// Package printing renders shipping labels to PDF.
//
// This package contains:
//   - Canvas, a thin wrapper over go-pdf/fpdf that owns the current drawing
//     style and restores it after scoped changes
//   - BarcodeGenerator and its Code 128 implementation
//   - LabelRenderer, which draws the fixed label layout into memory
//   - LabelArchive and FileSystemArchive for keeping copies of generated labels
//
// Example usage:
//
//	renderer := printing.NewLabelRenderer(printing.WithLogger(log))
//	result, err := renderer.Render(ctx, &label.Record{BarcodeText: "ABC12345"})
//	if err != nil {
//	    return err
//	}
//	w.Write(result.PDFData)
package printing
