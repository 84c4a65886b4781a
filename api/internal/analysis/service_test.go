package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeGateway struct {
	text  string
	err   error
	calls int

	prompt   string
	image    []byte
	mime     string
	deadline bool
}

func (g *fakeGateway) Generate(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	g.calls++
	g.prompt, g.image, g.mime = prompt, image, mime
	_, g.deadline = ctx.Deadline()
	return g.text, g.err
}

func jpegImage() *Image {
	return &Image{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, MIMEType: "image/jpeg", Filename: "scan.jpg"}
}

func TestAnalyze_Success(t *testing.T) {
	gw := &fakeGateway{text: "Looks like a healthy wrist."}
	s := NewService(gw, Options{Timeout: time.Minute}, nil)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	s.now = func() time.Time { return fixed }

	res, err := s.Analyze(context.Background(), Request{Image: jpegImage(), Query: "What is this?"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", gw.calls)
	}
	if !strings.Contains(gw.prompt, "What is this?") {
		t.Errorf("prompt %q does not contain the query", gw.prompt)
	}
	if gw.prompt != "Analyze this medical image. Patient's question: What is this?" {
		t.Errorf("prompt = %q", gw.prompt)
	}
	if gw.mime != "image/jpeg" || len(gw.image) != 4 {
		t.Errorf("gateway got mime=%q bytes=%d", gw.mime, len(gw.image))
	}
	if !gw.deadline {
		t.Error("expected the timeout to put a deadline on the context")
	}
	if res.Content != "Looks like a healthy wrist." {
		t.Errorf("Content = %q", res.Content)
	}
	if res.Query != "What is this?" || res.ImageFilename != "scan.jpg" {
		t.Errorf("echo mismatch: %+v", res)
	}
	if res.Timestamp() != "2026-03-04 05:06:07" {
		t.Errorf("Timestamp = %q", res.Timestamp())
	}
}

func TestAnalyze_NoTimeout(t *testing.T) {
	gw := &fakeGateway{text: "ok"}
	s := NewService(gw, Options{}, nil)
	if _, err := s.Analyze(context.Background(), Request{Image: jpegImage()}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if gw.deadline {
		t.Error("no deadline expected when timeout is zero")
	}
}

func TestAnalyze_MissingImage(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil", nil},
		{"empty", &Image{Filename: "empty.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{text: "unused"}
			s := NewService(gw, Options{}, nil)
			_, err := s.Analyze(context.Background(), Request{Image: tt.img, Query: "test"})
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Kind != KindValidation || f.Message != MsgNoImage {
				t.Errorf("failure = %+v", f)
			}
			if gw.calls != 0 {
				t.Errorf("gateway called %d times", gw.calls)
			}
		})
	}
}

func TestAnalyze_GatewayFailures(t *testing.T) {
	boom := errors.New("rpc error: code = Unavailable")
	tests := []struct {
		name     string
		gw       *fakeGateway
		wantKind FailureKind
		wantMsg  string
	}{
		{"empty text", &fakeGateway{text: ""}, KindEmptyResponse, MsgEmptyResponse},
		{"blank text", &fakeGateway{text: "  \n"}, KindEmptyResponse, MsgEmptyResponse},
		{"empty from gateway", &fakeGateway{err: ErrEmptyResponse}, KindEmptyResponse, MsgEmptyResponse},
		{"transport", &fakeGateway{err: boom}, KindProvider, boom.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.gw, Options{}, nil)
			_, err := s.Analyze(context.Background(), Request{Image: jpegImage(), Query: "q"})
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Kind != tt.wantKind || f.Message != tt.wantMsg {
				t.Errorf("failure = %+v, want kind %s msg %q", f, tt.wantKind, tt.wantMsg)
			}
			if tt.gw.calls != 1 {
				t.Errorf("gateway calls = %d, want 1", tt.gw.calls)
			}
		})
	}
}

func TestAnalyze_CustomTemplate(t *testing.T) {
	gw := &fakeGateway{text: "ok"}
	s := NewService(gw, Options{PromptTemplate: "Q=<%s>"}, nil)
	if _, err := s.Analyze(context.Background(), Request{Image: jpegImage(), Query: "100% sure?"}); err != nil {
		t.Fatal(err)
	}
	if gw.prompt != "Q=<100% sure?>" {
		t.Errorf("prompt = %q", gw.prompt)
	}
}

func TestAsFailure(t *testing.T) {
	if AsFailure(nil) != nil {
		t.Error("nil error should stay nil")
	}
	v := Validation("bad")
	wrapped := errors.Join(errors.New("ctx"), v)
	if got := AsFailure(wrapped); got != v {
		t.Errorf("AsFailure did not unwrap: %+v", got)
	}
	if got := AsFailure(errors.New("x")); got.Kind != KindProvider || got.Message != "x" {
		t.Errorf("AsFailure(plain) = %+v", got)
	}
}
