package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/drawmark/drawmark/internal/domain"
	"github.com/drawmark/drawmark/internal/pdf"
)

// Workspace manages the scratch and output directories for a run. Temp
// artifacts live and die inside one document's pipeline; output files
// survive.
type Workspace struct {
	TempDir   string
	OutputDir string
}

// NewWorkspace creates both directories if needed.
func NewWorkspace(tempDir, outputDir string) (*Workspace, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, domain.IOError("failed to create temp directory", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, domain.IOError("failed to create output directory", err)
	}
	return &Workspace{TempDir: tempDir, OutputDir: outputDir}, nil
}

// CleanTemp removes every file in the scratch directory.
func (w *Workspace) CleanTemp() error {
	entries, err := os.ReadDir(w.TempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return domain.IOError("failed to read temp directory", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(w.TempDir, entry.Name())); err != nil {
			return domain.IOError(fmt.Sprintf("failed to remove %s", entry.Name()), err)
		}
	}
	return nil
}

// PublishImage copies a temp image into the output directory and returns
// the relative reference to use in the markdown.
func (w *Workspace) PublishImage(srcPath string) (string, error) {
	name := filepath.Base(srcPath)
	dst := filepath.Join(w.OutputDir, name)

	src, err := os.Open(srcPath)
	if err != nil {
		return "", domain.IOError(fmt.Sprintf("failed to open image %s", name), err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", domain.IOError(fmt.Sprintf("failed to create image %s", name), err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", domain.IOError(fmt.Sprintf("failed to copy image %s", name), err)
	}
	if err := out.Close(); err != nil {
		return "", domain.IOError(fmt.Sprintf("failed to write image %s", name), err)
	}

	return "./" + name, nil
}

// DocumentPath returns where the final markdown for a document goes.
func (w *Workspace) DocumentPath(stem string) string {
	return filepath.Join(w.OutputDir, stem+".md")
}

// WriteDocument writes the final markdown.
func (w *Workspace) WriteDocument(stem, markdown string) (string, error) {
	path := w.DocumentPath(stem)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", domain.IOError("failed to write markdown output", err)
	}
	return path, nil
}

// WriteReport writes the per-document debug artifact with every finding,
// failed pages included.
func (w *Workspace) WriteReport(stem string, report domain.AnalysisReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", domain.IOError("failed to encode analysis report", err)
	}
	path := filepath.Join(w.OutputDir, stem+"_drawing_analysis.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", domain.IOError("failed to write analysis report", err)
	}
	return path, nil
}

// UniqueTempPath returns a collision-free path in the scratch directory.
func (w *Workspace) UniqueTempPath(name string) string {
	return pdf.EnsureUniquePath(filepath.Join(w.TempDir, name))
}
