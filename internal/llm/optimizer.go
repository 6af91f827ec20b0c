package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/drawmark/drawmark/internal/observability"
)

// MarkdownOptimizer restructures an assembled draft with the text model.
// The pass is best-effort: a failed chunk falls back to its unoptimized
// text, so the caller always gets a usable document back.
type MarkdownOptimizer struct {
	client         *Client
	model          string
	chunkSize      int
	singleChunkMax int
	maxTokens      int
	log            *observability.Logger
}

// OptimizerOptions configures a MarkdownOptimizer.
type OptimizerOptions struct {
	Model          string
	ChunkSize      int
	SingleChunkMax int
	MaxTokens      int
	Logger         *observability.Logger
}

// NewMarkdownOptimizer creates a model-backed markdown optimizer.
func NewMarkdownOptimizer(client *Client, opts OptimizerOptions) *MarkdownOptimizer {
	log := opts.Logger
	if log == nil {
		log = observability.Nop()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 4000
	}
	if opts.SingleChunkMax <= 0 {
		opts.SingleChunkMax = 3000
	}
	return &MarkdownOptimizer{
		client:         client,
		model:          opts.Model,
		chunkSize:      opts.ChunkSize,
		singleChunkMax: opts.SingleChunkMax,
		maxTokens:      opts.MaxTokens,
		log:            log,
	}
}

// Optimize restructures the draft markdown chunk by chunk. Short drafts go
// in one piece; longer ones are split at the configured chunk size and the
// processed chunks rejoined.
func (o *MarkdownOptimizer) Optimize(ctx context.Context, docName, markdown string) (string, error) {
	if len(markdown) < o.singleChunkMax {
		return o.optimizeChunk(ctx, docName, markdown), nil
	}

	chunks := SplitChunks(markdown, o.chunkSize)
	o.log.Info().Int("chunks", len(chunks)).Msg("optimizing draft in chunks")

	processed := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		o.log.Debug().Int("chunk", i+1).Int("total", len(chunks)).Msg("processing chunk")
		processed = append(processed, o.optimizeChunk(ctx, docName, chunk))
	}

	return strings.Join(processed, "\n\n"), nil
}

// optimizeChunk runs a single restructuring call, falling back to the
// original chunk on any failure.
func (o *MarkdownOptimizer) optimizeChunk(ctx context.Context, docName, chunk string) string {
	msg := TextMessage(buildOptimizePrompt(docName, chunk))

	result, err := o.client.CompleteStream(ctx, o.model, []Message{msg}, o.maxTokens)
	if err != nil {
		o.log.Warn().Err(err).Msg("chunk optimization failed, keeping original")
		return chunk
	}
	if strings.TrimSpace(result) == "" {
		return chunk
	}
	return result
}

// SplitChunks slices text into pieces of at most size bytes, never cutting
// through a UTF-8 rune. Drawing documents are routinely CJK; a chunk boundary
// through a multi-byte rune would feed the model mojibake it cannot restore.
func SplitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	var chunks []string
	for len(text) > size {
		end := size
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == 0 {
			end = size
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}
