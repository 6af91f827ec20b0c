package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/drawmark/drawmark/internal/domain"
)

// Validator checks input PDFs before MuPDF opens them.
type Validator struct {
	conf *model.Configuration
}

// NewValidator creates a validator with relaxed pdfcpu validation, matching
// what real-world scanned documents need.
func NewValidator() *Validator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Validator{conf: conf}
}

// ValidatePDFPath validates that a path points to a readable, structurally
// sound PDF and returns its page count.
func (v *Validator) ValidatePDFPath(path string) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return 0, domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return 0, domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return 0, domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s)", ext), nil)
	}

	if err := api.ValidateFile(path, v.conf); err != nil {
		return 0, domain.ValidationError(fmt.Sprintf("PDF failed structural validation: %s", path), err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, domain.ValidationError(fmt.Sprintf("cannot read page count: %s", path), err)
	}
	if count == 0 {
		return 0, domain.ValidationError("PDF has no pages", nil)
	}

	return count, nil
}

// ValidateQuality validates the JPEG quality parameter.
func (v *Validator) ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return domain.ValidationError(fmt.Sprintf("quality must be between 1 and 100, got %d", quality), nil)
	}
	return nil
}
