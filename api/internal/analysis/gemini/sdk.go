package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mediclick/api/internal/analysis"
)

// SDK talks to Gemini through the official Go client. The client is built
// once at startup and shared by all requests.
type SDK struct {
	Model  string
	client *genai.Client
}

func NewSDK(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*SDK, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &SDK{Model: strings.TrimSpace(model), client: cl}, nil
}

func (e *SDK) Close() error { return e.client.Close() }

func (e *SDK) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	m := e.client.GenerativeModel(e.Model)

	// The SDK base64-encodes Blob.Data on the wire.
	resp, err := m.GenerateContent(ctx,
		genai.Text(prompt),
		&genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", err
	}
	txt := candidateText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", analysis.ErrEmptyResponse
	}
	return txt, nil
}

// candidateText joins the text parts of the first candidate that has content.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
