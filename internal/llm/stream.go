package llm

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// StreamParser reads a chat-completions SSE response line by line and
// yields the content deltas.
type StreamParser struct {
	r *bufio.Reader
}

// NewStreamParser creates a parser over a raw SSE body.
func NewStreamParser(reader io.Reader) *StreamParser {
	return &StreamParser{r: bufio.NewReader(reader)}
}

// StreamChunk is one content delta from the stream.
type StreamChunk struct {
	Content      string
	FinishReason string
	Done         bool
}

// Next returns the next non-empty delta. Comment lines, keep-alives, and
// events without content are skipped; end of input, the [DONE] marker, and a
// finish reason all close the stream.
func (p *StreamParser) Next() (*StreamChunk, error) {
	for {
		line, err := p.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		// The event field is "data:", with or without a space after it.
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				return &StreamChunk{Done: true}, nil
			}

			var resp Response
			if json.Unmarshal([]byte(data), &resp) == nil {
				if chunk := firstDelta(resp.Choices); chunk != nil {
					return chunk, nil
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return &StreamChunk{Done: true}, nil
			}
			return nil, err
		}
	}
}

// Collect drains the stream and returns the concatenated content.
func (p *StreamParser) Collect() (string, error) {
	var b strings.Builder
	for {
		chunk, err := p.Next()
		if err != nil {
			return "", err
		}
		b.WriteString(chunk.Content)
		if chunk.Done {
			return b.String(), nil
		}
	}
}

// firstDelta picks the first choice that carries content or a finish
// reason. Providers occasionally send several choices per event; only one
// ever carries the delta.
func firstDelta(choices []Choice) *StreamChunk {
	for _, choice := range choices {
		if choice.Delta.Content == "" && choice.FinishReason == "" {
			continue
		}
		return &StreamChunk{
			Content:      choice.Delta.Content,
			FinishReason: choice.FinishReason,
			Done:         choice.FinishReason != "",
		}
	}
	return nil
}
