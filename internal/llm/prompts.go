package llm

import "fmt"

// classificationPrompt asks the vision model for a bare YES/NO verdict.
// Pages carrying only tabular data count as drawings because the analysis
// model handles them better than structural text extraction does.
const classificationPrompt = `Determine whether this image is a technical drawing, architectural drawing, or engineering design drawing.
If the image contains many straight lines, shapes, dimensions and technical notation with little prose text, it is likely a drawing. If the page contains only table data, treat it as a drawing as well.
Answer only "YES" if it is a drawing, or only "NO" if it is not.`

// analysisPrompt instructs the vision model to describe a drawing and close
// with a machine-readable JSON block the parser picks up.
const analysisPrompt = `Carefully analyze the drawing and provide the following information:

1. Drawing type: identify the type of drawing (architectural, mechanical, electrical, plumbing, etc.); retain the original language when translating.
2. Major components: identify the major components shown in the drawing.
3. Numerical values and dimensions: accurately record all numerical values and dimensions shown in the drawing.
   - Clearly indicate the value and unit of every dimension.
   - Classify dimensions such as length, width, height, diameter and radius systematically.
4. Annotations and special symbols: include the meaning of annotations and special symbols on the drawing.
5. Coordinates and orientation: if coordinates or orientation are indicated, specify them.
6. Record content that combines numbers, characters and special symbols.
7. If there are notes in the drawing, record the note contents in detail (e.g. nozzle data descriptions).
8. Table format information: data presented in tables should be organized as tables, with each column, row and cell clearly distinguished.
9. Record all text within the drawing in the original language, and provide both the original and a translation where translation is needed.

Return format:
- Structure the analysis results as markdown.
- Record numbers and units accurately, grouped by category where possible.
- At the end, add the numerical data in a JSON block in exactly this format:

` + "```json" + `
{
  "drawing_type": "drawing type",
  "key_dimensions": [
    {"component": "component 1", "dimension": "dimension 1", "value": "value", "unit": "unit"},
    {"component": "component 2", "dimension": "dimension 2", "value": "value", "unit": "unit"}
  ],
  "tables": [
    {"headers": ["col 1", "col 2"], "rows": [["a", "b"]]}
  ],
  "coordinates": {
    "system": "coordinate system type",
    "orientation": "orientation information"
  }
}
` + "```"

// buildAnalysisPrompt appends neighbour-page context when available.
func buildAnalysisPrompt(pageContext string) string {
	if pageContext == "" {
		return analysisPrompt
	}
	return analysisPrompt + "\n\nRelated context from surrounding pages:\n" + pageContext
}

// buildOptimizePrompt wraps one draft chunk for the restructuring pass.
func buildOptimizePrompt(docName, chunk string) string {
	return fmt.Sprintf(`You are an expert at integrating drawing images and analysis results while preserving the original content of a PDF document.
Keep the markdown content of the document "%s" intact while presenting drawing images and analysis results appropriately.
This content is one part of the full document.

Rules that must be followed:
1. Preserve the provided original markdown content as much as possible.
2. If drawing images and analysis results are already embedded in the markdown, keep that structure.
3. Preserve the original PDF content even when no drawings are present.
4. Keep image reference syntax (![drawing](path)) exactly as it is.
5. Keep table structure from the drawing analysis; when JSON table data appears, convert it into markdown tables with each header, row and cell clearly separated.
6. Preserve page separators (<!-- page N -->).
7. Keep heading levels consistent across the document.
8. Remove empty sections and placeholder text that carries no content.
9. The chunk may start or end mid-sentence; leave incomplete sentences as they are.
10. Keep page separators even for blank pages.

Original markdown content:
`+"```"+`
%s
`+"```"+`

Return the cleaned markdown directly, without any introduction or commentary.`, docName, chunk)
}
