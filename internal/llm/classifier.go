package llm

import (
	"context"
	"strings"

	"github.com/drawmark/drawmark/internal/domain"
)

// The verdict is capped well below the model's habit of elaborating.
const classifyMaxTokens = 10

// PageClassifier labels page previews as drawing or not using the
// classification model.
type PageClassifier struct {
	client *Client
	model  string
}

// NewPageClassifier creates a model-backed page classifier.
func NewPageClassifier(client *Client, model string) *PageClassifier {
	return &PageClassifier{client: client, model: model}
}

// IsDrawing sends the preview image to the classification model and parses
// the YES/NO verdict. Any response without a recognizable YES counts as not
// a drawing.
func (c *PageClassifier) IsDrawing(ctx context.Context, imagePath, pageText string) (bool, error) {
	msg, err := VisionMessage(classificationPrompt, imagePath)
	if err != nil {
		return false, domain.APIError("failed to build classification request", err)
	}

	reply, err := c.client.Complete(ctx, c.model, []Message{msg}, classifyMaxTokens)
	if err != nil {
		return false, err
	}

	return strings.Contains(strings.ToUpper(reply), "YES"), nil
}

// HeuristicClassifier labels pages without any model call: technical
// drawings carry little machine-readable text. It exists for offline runs
// and as the safety net when the service is unreachable.
type HeuristicClassifier struct {
	textThreshold int
}

// NewHeuristicClassifier creates a text-length classifier. Pages with fewer
// extractable characters than threshold are treated as drawings.
func NewHeuristicClassifier(threshold int) *HeuristicClassifier {
	return &HeuristicClassifier{textThreshold: threshold}
}

// IsDrawing labels the page from its extracted text alone.
func (c *HeuristicClassifier) IsDrawing(_ context.Context, _ string, pageText string) (bool, error) {
	return len(strings.TrimSpace(pageText)) < c.textThreshold, nil
}
