package pipeline

import (
	"strings"
	"testing"

	"github.com/drawmark/drawmark/internal/domain"
)

func TestBuildDraftKeepsPageOrder(t *testing.T) {
	pages := []domain.Page{
		{Index: 0, Text: "Cover page text."},
		{Index: 1, IsDrawing: true, ImagePath: "./doc_drawing_page_1.png"},
		{Index: 2, Text: "Closing notes."},
	}
	findings := []domain.DrawingFinding{
		{PageIndex: 1, ImagePath: "./doc_drawing_page_1.png", DrawingType: "site plan"},
	}

	var a Assembler
	draft := a.BuildDraft("doc", pages, findings)

	if draft.Len() != 3 {
		t.Fatalf("expected 3 fragments, got %d", draft.Len())
	}
	for i, frag := range draft.Fragments {
		if frag.PageIndex != i {
			t.Errorf("fragment %d carries page index %d", i, frag.PageIndex)
		}
	}

	markdown := a.RenderDraft(draft)

	for _, sep := range []string{"<!-- page 0 -->", "<!-- page 1 -->", "<!-- page 2 -->"} {
		if !strings.Contains(markdown, sep) {
			t.Errorf("markdown missing separator %q", sep)
		}
	}
	if strings.Index(markdown, "Cover page") > strings.Index(markdown, "site plan") {
		t.Error("page order not preserved in the rendered draft")
	}
}

func TestRenderDraftBlankPageKeepsSeparator(t *testing.T) {
	var a Assembler
	draft := a.BuildDraft("doc", []domain.Page{{Index: 0}, {Index: 1, Text: "content"}}, nil)
	markdown := a.RenderDraft(draft)

	if !strings.Contains(markdown, "<!-- page 0 -->") {
		t.Error("blank page lost its separator")
	}
}

func TestRenderDrawingPageWithFinding(t *testing.T) {
	pages := []domain.Page{
		{Index: 0, IsDrawing: true, ImagePath: "./doc_drawing_page_0.png"},
	}
	findings := []domain.DrawingFinding{
		{
			PageIndex:   0,
			ImagePath:   "./doc_drawing_page_0.png",
			DrawingType: "floor plan",
			Analysis:    "Ground floor layout with two bedrooms.",
			Dimensions: []domain.Dimension{
				{Component: "bedroom 1", Label: "width", Value: "3.2", Unit: "m"},
			},
			Tables: []domain.Table{
				{Headers: []string{"Room", "Area"}, Rows: [][]string{{"Bedroom 1", "11.5"}}},
			},
		},
	}

	var a Assembler
	markdown := a.RenderDraft(a.BuildDraft("doc", pages, findings))

	for _, want := range []string{
		"## Drawing 1",
		"![drawing](./doc_drawing_page_0.png)",
		"### Drawing Analysis",
		"**Drawing type:** floor plan",
		"Ground floor layout",
		"| bedroom 1 | width | 3.2 | m |",
		"| Room | Area |",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("markdown missing %q\n%s", want, markdown)
		}
	}
}

func TestRenderDrawingPageFailedAnalysis(t *testing.T) {
	pages := []domain.Page{
		{Index: 3, IsDrawing: true, ImagePath: "./doc_drawing_page_3.png"},
	}
	findings := []domain.DrawingFinding{
		{PageIndex: 3, Error: "service unavailable"},
	}

	var a Assembler
	markdown := a.RenderDraft(a.BuildDraft("doc", pages, findings))

	if !strings.Contains(markdown, "![drawing](./doc_drawing_page_3.png)") {
		t.Error("failed analysis should still reference the image")
	}
	if !strings.Contains(markdown, "_Drawing analysis failed for this page._") {
		t.Error("failed analysis note missing")
	}
	if strings.Contains(markdown, "### Drawing Analysis") {
		t.Error("failed analysis should not render an analysis section")
	}
}

func TestRenderDrawingPageWithoutFinding(t *testing.T) {
	pages := []domain.Page{
		{Index: 0, IsDrawing: true, ImagePath: "./doc_drawing_page_0.png"},
	}

	var a Assembler
	markdown := a.RenderDraft(a.BuildDraft("doc", pages, nil))

	if !strings.Contains(markdown, "## Drawing 1") {
		t.Error("drawing section missing")
	}
	if strings.Contains(markdown, "### Drawing Analysis") {
		t.Error("no analysis section expected without a finding")
	}
}

func TestRenderTable(t *testing.T) {
	table := domain.Table{
		Headers: []string{"Mark", "Size"},
		Rows: [][]string{
			{"M1", "M16"},
			{"M2 | special", "M20", "extra"},
		},
	}

	got := RenderTable(table)
	lines := strings.Split(got, "\n")

	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "| Mark | Size |  |" {
		t.Errorf("header row = %q", lines[0])
	}
	if lines[1] != "|---|---|---|" {
		t.Errorf("delimiter row = %q", lines[1])
	}
	if !strings.Contains(lines[3], `M2 \| special`) {
		t.Errorf("pipe not escaped in %q", lines[3])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(domain.Table{}); got != "" {
		t.Errorf("empty table should render nothing, got %q", got)
	}
}

func TestRenderDimensions(t *testing.T) {
	got := RenderDimensions([]domain.Dimension{
		{Component: "shaft", Label: "diameter", Value: "25", Unit: "mm"},
	})

	if !strings.Contains(got, "| Component | Dimension | Value | Unit |") {
		t.Errorf("dimension header missing:\n%s", got)
	}
	if !strings.Contains(got, "| shaft | diameter | 25 | mm |") {
		t.Errorf("dimension row missing:\n%s", got)
	}
}
