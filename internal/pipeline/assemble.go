package pipeline

import (
	"fmt"
	"strings"

	"github.com/drawmark/drawmark/internal/domain"
)

// Assembler merges page records and drawing findings into a single markdown
// draft. Output order is page order, always, regardless of which pages were
// drawings or which analyses failed.
type Assembler struct{}

// BuildDraft renders one fragment per page. Findings are matched to pages
// by index; a drawing page without a finding (skipped or failed analysis)
// still gets its section and image reference.
func (a *Assembler) BuildDraft(name string, pages []domain.Page, findings []domain.DrawingFinding) *domain.DocumentDraft {
	byPage := make(map[int]domain.DrawingFinding, len(findings))
	for _, f := range findings {
		byPage[f.PageIndex] = f
	}

	draft := &domain.DocumentDraft{Name: name}
	for _, page := range pages {
		finding, ok := byPage[page.Index]
		if page.IsDrawing && page.ImagePath != "" {
			if !ok {
				finding = domain.DrawingFinding{PageIndex: page.Index, ImagePath: page.ImagePath}
			}
			draft.Append(page.Index, a.renderDrawingPage(page, finding))
		} else {
			draft.Append(page.Index, a.renderTextPage(page))
		}
	}
	return draft
}

// RenderDraft joins the fragments with page separators into one markdown
// document.
func (a *Assembler) RenderDraft(draft *domain.DocumentDraft) string {
	var b strings.Builder
	for _, frag := range draft.Fragments {
		fmt.Fprintf(&b, "<!-- page %d -->\n\n", frag.PageIndex)
		b.WriteString(frag.Markdown)
		b.WriteString("\n\n")
	}
	return b.String()
}

func (a *Assembler) renderTextPage(page domain.Page) string {
	var parts []string
	if text := strings.TrimSpace(page.Text); text != "" {
		parts = append(parts, text)
	}
	for _, t := range page.Tables {
		parts = append(parts, RenderTable(t))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n")
}

func (a *Assembler) renderDrawingPage(page domain.Page, finding domain.DrawingFinding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Drawing %d\n\n", page.Index+1)
	fmt.Fprintf(&b, "![drawing](%s)\n", page.ImagePath)

	if finding.Failed() {
		b.WriteString("\n_Drawing analysis failed for this page._\n")
		return strings.TrimRight(b.String(), "\n")
	}

	hasContent := finding.Analysis != "" || finding.DrawingType != "" ||
		len(finding.Dimensions) > 0 || len(finding.Tables) > 0
	if !hasContent {
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString("\n### Drawing Analysis\n\n")

	if finding.DrawingType != "" {
		fmt.Fprintf(&b, "**Drawing type:** %s\n\n", finding.DrawingType)
	}
	if finding.Analysis != "" {
		b.WriteString(finding.Analysis)
		b.WriteString("\n\n")
	}
	if len(finding.Dimensions) > 0 {
		b.WriteString(RenderDimensions(finding.Dimensions))
		b.WriteString("\n\n")
	}
	for _, t := range finding.Tables {
		b.WriteString(RenderTable(t))
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderDimensions renders dimension entries as a markdown table, keeping
// their original order.
func RenderDimensions(dims []domain.Dimension) string {
	t := domain.Table{Headers: []string{"Component", "Dimension", "Value", "Unit"}}
	for _, d := range dims {
		t.Rows = append(t.Rows, []string{d.Component, d.Label, d.Value, d.Unit})
	}
	return RenderTable(t)
}

// RenderTable renders a normalized table as a markdown pipe table.
func RenderTable(t domain.Table) string {
	width := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", "\\|")
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	headers := t.Headers
	if len(headers) == 0 {
		headers = make([]string, width)
	}
	writeRow(headers)

	b.WriteString("|")
	for i := 0; i < width; i++ {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}
