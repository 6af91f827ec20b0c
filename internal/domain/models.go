package domain

import "strings"

// Rotation values a page raster can carry, in degrees clockwise.
const (
	RotationNone = 0
	Rotation90   = 90
	Rotation180  = 180
	Rotation270  = 270
)

// Page is the per-page record produced during classification and rendering.
// Once classified it is never mutated; later stages read it and produce new
// artifacts.
type Page struct {
	Index     int      `json:"index"`
	IsDrawing bool     `json:"is_drawing"`
	Rotation  int      `json:"rotation_degrees"`
	Text      string   `json:"raw_text,omitempty"`
	Tables    []Table  `json:"tables,omitempty"`
	ImagePath string   `json:"image_path,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Table is a normalized tabular block extracted from a page or returned by
// the vision model.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Empty reports whether the table carries no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Dimension is a single measurement entry from a drawing analysis.
type Dimension struct {
	Component string `json:"component,omitempty"`
	Label     string `json:"dimension,omitempty"`
	Value     string `json:"value,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

// DrawingFinding is the structured result of analyzing one drawing page.
// A finding is produced exactly once per drawing page and never mutated.
// Failed analyses still produce a finding so the run stays inspectable:
// Error carries the failure and the structured fields stay empty.
type DrawingFinding struct {
	PageIndex   int         `json:"page_index"`
	ImagePath   string      `json:"image_path,omitempty"`
	DrawingType string      `json:"drawing_type,omitempty"`
	Dimensions  []Dimension `json:"key_dimensions,omitempty"`
	Tables      []Table     `json:"tables,omitempty"`
	Analysis    string      `json:"analysis,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Failed reports whether the analysis for this page did not complete.
func (f DrawingFinding) Failed() bool {
	return f.Error != ""
}

// Fragment is one page's rendered markdown inside a draft.
type Fragment struct {
	PageIndex int
	Markdown  string
}

// DocumentDraft is the ordered, append-only sequence of page fragments built
// by the assembler. Page order equals document order.
type DocumentDraft struct {
	Name      string
	Fragments []Fragment
}

// Append adds a fragment. Fragments must arrive in page order; the assembler
// is the only writer.
func (d *DocumentDraft) Append(pageIndex int, markdown string) {
	d.Fragments = append(d.Fragments, Fragment{PageIndex: pageIndex, Markdown: markdown})
}

// Len returns the number of page fragments in the draft.
func (d *DocumentDraft) Len() int {
	return len(d.Fragments)
}

// FinalDocument is the optimized markdown plus the image files it references.
// Every entry in Images must resolve to a file under the output directory.
type FinalDocument struct {
	Markdown   string
	OutputPath string
	Images     []string
}

// AnalysisReport is the debug artifact written alongside the output: every
// finding for the document, failed pages included.
type AnalysisReport struct {
	RunID    string           `json:"run_id"`
	Source   string           `json:"source"`
	Findings []DrawingFinding `json:"findings"`
}

// Stem returns the file name without directory and extension, the base name
// used for all derived artifacts.
func Stem(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
