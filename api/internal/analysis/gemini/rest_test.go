package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediclick/api/internal/analysis"
)

func TestREST_Generate(t *testing.T) {
	img := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	var got generateRequest
	var gotPath, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A fracture "},{"text":"is visible."}]}}]}`))
	}))
	defer srv.Close()

	e := NewREST("secret", "gemini-1.5-flash", srv.URL+"/")
	txt, err := e.Generate(context.Background(), "Analyze: What is this?", img, "image/jpeg")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if txt != "A fracture is visible." {
		t.Errorf("text = %q", txt)
	}
	if gotPath != "/v1/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("key = %q", gotKey)
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", got)
	}
	parts := got.Contents[0].Parts
	if parts[0].Text != "Analyze: What is this?" {
		t.Errorf("prompt part = %q", parts[0].Text)
	}
	if parts[1].InlineData == nil {
		t.Fatal("missing inline_data part")
	}
	if parts[1].InlineData.MimeType != "image/jpeg" {
		t.Errorf("mime = %q", parts[1].InlineData.MimeType)
	}
	raw, err := base64.StdEncoding.DecodeString(parts[1].InlineData.Data)
	if err != nil {
		t.Fatalf("inline data is not base64: %v", err)
	}
	if !bytes.Equal(raw, img) {
		t.Errorf("image bytes changed in transit")
	}
}

func TestREST_GenerateFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantEmpty bool
		wantSub   string
	}{
		{"no candidates", http.StatusOK, `{"candidates":[]}`, true, ""},
		{"no parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`, true, ""},
		{"no content", http.StatusOK, `{"candidates":[{"finishReason":"SAFETY"}]}`, true, ""},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, true, ""},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, false, "blocked: SAFETY"},
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, false, "gemini 400: API key not valid"},
		{"plain error", http.StatusBadGateway, `upstream down`, false, "gemini 502: upstream down"},
		{"bad json", http.StatusOK, `{`, false, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewREST("k", "m", srv.URL).Generate(context.Background(), "p", []byte{1}, "image/png")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantEmpty {
				if !errors.Is(err, analysis.ErrEmptyResponse) {
					t.Errorf("want ErrEmptyResponse, got %v", err)
				}
				return
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestREST_MissingKey(t *testing.T) {
	if _, err := NewREST(" ", "m", "").Generate(context.Background(), "p", []byte{1}, "image/png"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestREST_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewREST("secret-key", "m", srv.URL).Generate(ctx, "p", []byte{1}, "image/png")
	if err == nil {
		t.Fatal("expected deadline error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("want DeadlineExceeded, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("API key leaked into error: %v", err)
	}
}

func TestCandidateText_Nil(t *testing.T) {
	if got := candidateText(nil); got != "" {
		t.Errorf("candidateText(nil) = %q", got)
	}
}
