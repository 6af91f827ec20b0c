package domain

import "testing"

func TestStem(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "plain file name",
			path: "drawing.pdf",
			want: "drawing",
		},
		{
			name: "nested path",
			path: "docs/plans/floor_plan.pdf",
			want: "floor_plan",
		},
		{
			name: "windows path",
			path: `C:\docs\assembly.pdf`,
			want: "assembly",
		},
		{
			name: "no extension",
			path: "specs/readme",
			want: "readme",
		},
		{
			name: "dotfile keeps its name",
			path: ".hidden",
			want: ".hidden",
		},
		{
			name: "multiple dots",
			path: "rev.2.final.pdf",
			want: "rev.2.final",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stem(tt.path); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestTableEmpty(t *testing.T) {
	if !(Table{Headers: []string{"A", "B"}}).Empty() {
		t.Error("table with headers but no rows should be empty")
	}
	if (Table{Rows: [][]string{{"1", "2"}}}).Empty() {
		t.Error("table with rows should not be empty")
	}
}

func TestDrawingFindingFailed(t *testing.T) {
	if (DrawingFinding{DrawingType: "floor plan"}).Failed() {
		t.Error("finding without error should not be failed")
	}
	if !(DrawingFinding{Error: "timeout"}).Failed() {
		t.Error("finding with error should be failed")
	}
}

func TestDocumentDraftAppendOrder(t *testing.T) {
	draft := &DocumentDraft{Name: "doc"}
	draft.Append(0, "first")
	draft.Append(1, "second")
	draft.Append(2, "third")

	if draft.Len() != 3 {
		t.Fatalf("expected 3 fragments, got %d", draft.Len())
	}
	for i, frag := range draft.Fragments {
		if frag.PageIndex != i {
			t.Errorf("fragment %d has page index %d", i, frag.PageIndex)
		}
	}
	if draft.Fragments[1].Markdown != "second" {
		t.Errorf("fragment order broken: %q", draft.Fragments[1].Markdown)
	}
}
