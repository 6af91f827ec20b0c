package pdf

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"github.com/drawmark/drawmark/internal/domain"
)

// Renderer rasterizes PDF pages using go-fitz. Low-resolution JPEG previews
// feed classification; high-resolution PNGs feed drawing analysis.
type Renderer struct {
	doc         *fitz.Document
	stem        string
	previewDPI  float64
	drawingDPI  float64
	jpegQuality int
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	PreviewDPI  float64
	DrawingDPI  float64
	JPEGQuality int
}

// OpenRenderer opens a PDF document for rendering. The caller owns the
// returned Renderer and must Close it.
func OpenRenderer(pdfPath string, opts RendererOptions) (*Renderer, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("failed to open PDF", err)
	}
	return &Renderer{
		doc:         doc,
		stem:        domain.Stem(pdfPath),
		previewDPI:  opts.PreviewDPI,
		drawingDPI:  opts.DrawingDPI,
		jpegQuality: opts.JPEGQuality,
	}, nil
}

// PageCount returns the number of pages in the open document.
func (r *Renderer) PageCount() int {
	return r.doc.NumPage()
}

// PageText extracts the plain text of a page.
func (r *Renderer) PageText(pageIndex int) (string, error) {
	text, err := r.doc.Text(pageIndex)
	if err != nil {
		return "", domain.ConversionError(fmt.Sprintf("failed to extract text from page %d", pageIndex+1), err)
	}
	return text, nil
}

// RenderPreview renders a page as a low-resolution JPEG in dir and returns
// the file path. Previews are classification input only and stay in the
// scratch area.
func (r *Renderer) RenderPreview(ctx context.Context, pageIndex int, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := r.doc.ImageDPI(pageIndex, r.previewDPI)
	if err != nil {
		return "", domain.ConversionError(fmt.Sprintf("failed to render page %d", pageIndex+1), err)
	}

	outputPath := filepath.Join(dir, fmt.Sprintf("%s_page_%d_preview.jpg", r.stem, pageIndex))
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return "", domain.IOError(fmt.Sprintf("failed to create preview file for page %d", pageIndex+1), err)
	}

	err = jpeg.Encode(outputFile, img, &jpeg.Options{Quality: r.jpegQuality})
	outputFile.Close()
	if err != nil {
		return "", domain.ConversionError(fmt.Sprintf("failed to encode page %d as JPEG", pageIndex+1), err)
	}

	return outputPath, nil
}

// RenderDrawing renders a drawing page as a high-resolution, upright PNG in
// dir. Returns the file path and the rotation correction that was applied.
func (r *Renderer) RenderDrawing(ctx context.Context, pageIndex int, dir string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	img, err := r.doc.ImageDPI(pageIndex, r.drawingDPI)
	if err != nil {
		return "", 0, domain.ConversionError(fmt.Sprintf("failed to render page %d", pageIndex+1), err)
	}

	upright, rotation := CorrectRotation(img)

	outputPath := EnsureUniquePath(filepath.Join(dir, fmt.Sprintf("%s_drawing_page_%d.png", r.stem, pageIndex)))
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return "", 0, domain.IOError(fmt.Sprintf("failed to create drawing file for page %d", pageIndex+1), err)
	}

	err = png.Encode(outputFile, upright)
	outputFile.Close()
	if err != nil {
		return "", 0, domain.ConversionError(fmt.Sprintf("failed to encode page %d as PNG", pageIndex+1), err)
	}

	return outputPath, rotation, nil
}

// Close releases the underlying document.
func (r *Renderer) Close() error {
	if r.doc != nil {
		r.doc.Close()
		r.doc = nil
	}
	return nil
}

// EnsureUniquePath returns path, or path with a "-N" suffix if a file
// already exists there.
func EnsureUniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s-%d%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
