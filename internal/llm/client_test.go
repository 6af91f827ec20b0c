package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drawmark/drawmark/internal/domain"
)

func TestCompleteReturnsMessageContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type header = %q", got)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"analysis text"}}]}`)
	})

	got, err := client.Complete(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got != "analysis text" {
		t.Errorf("Complete() = %q", got)
	}
}

func TestCompleteFallsBackToDeltaContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"delta":{"content":"from delta"}}]}`)
	})

	got, err := client.Complete(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got != "from delta" {
		t.Errorf("Complete() = %q", got)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := client.Complete(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err == nil {
		t.Fatal("expected an error for an empty choices list")
	}
	if domain.KindOf(err) != domain.KindAPI {
		t.Errorf("expected an api error, got %v", err)
	}
}

func TestSendRetriesThrottledRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 5,
		BaseWait:   time.Millisecond,
	})

	got, err := client.Complete(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q", got)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad request"}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 5,
		BaseWait:   time.Millisecond,
	})

	_, err := client.Complete(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err == nil {
		t.Fatal("expected an error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", n)
	}
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 2,
		BaseWait:   time.Millisecond,
	})

	_, err := client.Complete(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if !errors.Is(err, &domain.Error{Kind: domain.KindAPI}) {
		t.Errorf("expected an api error, got %v", err)
	}
}

func TestSendHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 10,
		BaseWait:   time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "test/model", []Message{TextMessage("hi")}, 100)
	if err == nil {
		t.Fatal("expected cancellation to surface")
	}
}

func TestCompleteStream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"chunk one \"}}]}\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"chunk two\"}}]}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	})

	got, err := client.CompleteStream(context.Background(), "test/model", []Message{TextMessage("hi")}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got != "chunk one chunk two" {
		t.Errorf("CompleteStream() = %q", got)
	}
}

func TestVisionMessage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		wantMime string
	}{
		{
			name:     "jpeg preview",
			file:     "preview.jpg",
			wantMime: "data:image/jpeg;base64,",
		},
		{
			name:     "png drawing",
			file:     "drawing.PNG",
			wantMime: "data:image/png;base64,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte("image-bytes"), 0o644); err != nil {
				t.Fatal(err)
			}

			msg, err := VisionMessage("describe this", path)
			if err != nil {
				t.Fatal(err)
			}
			if msg.Role != "user" {
				t.Errorf("Role = %q", msg.Role)
			}
			if len(msg.Content) != 2 {
				t.Fatalf("expected 2 content parts, got %d", len(msg.Content))
			}
			if msg.Content[0].Text != "describe this" {
				t.Errorf("prompt part = %q", msg.Content[0].Text)
			}
			if !strings.HasPrefix(msg.Content[1].ImageURL.URL, tt.wantMime) {
				t.Errorf("data URL prefix = %q, want %q", msg.Content[1].ImageURL.URL[:30], tt.wantMime)
			}
		})
	}
}
