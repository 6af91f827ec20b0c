package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/drawmark/drawmark/internal/domain"
)

// DrawingAnalyzer extracts structured findings from drawing images using the
// vision model.
type DrawingAnalyzer struct {
	client    *Client
	model     string
	maxTokens int
}

// NewDrawingAnalyzer creates a model-backed drawing analyzer.
func NewDrawingAnalyzer(client *Client, model string, maxTokens int) *DrawingAnalyzer {
	return &DrawingAnalyzer{client: client, model: model, maxTokens: maxTokens}
}

// Analyze sends the drawing image to the vision model and parses the
// response into a finding. The prose analysis is always kept; the structured
// fields come from the trailing JSON block and stay empty when the model
// omits or mangles it.
func (a *DrawingAnalyzer) Analyze(ctx context.Context, imagePath, pageContext string) (domain.DrawingFinding, error) {
	msg, err := VisionMessage(buildAnalysisPrompt(pageContext), imagePath)
	if err != nil {
		return domain.DrawingFinding{}, domain.APIError("failed to build analysis request", err)
	}

	reply, err := a.client.Complete(ctx, a.model, []Message{msg}, a.maxTokens)
	if err != nil {
		return domain.DrawingFinding{}, err
	}

	finding := ParseAnalysis(reply)
	finding.ImagePath = imagePath
	return finding, nil
}

// analysisPayload mirrors the JSON block the analysis prompt requests.
// Every field is optional.
type analysisPayload struct {
	DrawingType   string             `json:"drawing_type"`
	KeyDimensions []domain.Dimension `json:"key_dimensions"`
	Tables        []domain.Table     `json:"tables"`
	Coordinates   json.RawMessage    `json:"coordinates"`
}

// ParseAnalysis splits a model reply into prose analysis and structured
// fields. A missing or unparseable JSON block leaves the structured fields
// empty; the prose still makes it into the document.
func ParseAnalysis(reply string) domain.DrawingFinding {
	finding := domain.DrawingFinding{
		Analysis: strings.TrimSpace(stripJSONBlock(reply)),
	}

	payload, ok := extractJSONPayload(reply)
	if !ok {
		return finding
	}

	finding.DrawingType = payload.DrawingType
	finding.Dimensions = payload.KeyDimensions
	for _, t := range payload.Tables {
		if !t.Empty() || len(t.Headers) > 0 {
			finding.Tables = append(finding.Tables, t)
		}
	}
	return finding
}

// extractJSONPayload finds and decodes the last JSON object in the reply.
// Models wrap it in a fenced block when they follow the prompt, but plain
// trailing JSON is accepted too.
func extractJSONPayload(reply string) (analysisPayload, bool) {
	var payload analysisPayload

	candidate := reply
	if i := strings.LastIndex(reply, "```json"); i >= 0 {
		candidate = reply[i+len("```json"):]
		if j := strings.Index(candidate, "```"); j >= 0 {
			candidate = candidate[:j]
		}
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end <= start {
		return payload, false
	}

	if err := json.Unmarshal([]byte(candidate[start:end+1]), &payload); err != nil {
		return analysisPayload{}, false
	}
	return payload, true
}

// stripJSONBlock removes the trailing fenced JSON block from the reply so
// the prose is not duplicated by the rendered dimension table.
func stripJSONBlock(reply string) string {
	i := strings.LastIndex(reply, "```json")
	if i == -1 {
		return reply
	}
	rest := reply[i+len("```json"):]
	j := strings.Index(rest, "```")
	if j == -1 {
		return reply[:i]
	}
	return reply[:i] + rest[j+len("```"):]
}
