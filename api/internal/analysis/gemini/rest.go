package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mediclick/api/internal/analysis"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// REST calls the public generateContent endpoint directly with the image
// inlined as base64.
type REST struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func NewREST(key, model, baseURL string) *REST {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &REST{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{}, // deadlines come from the request context
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (e *REST) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GOOGLE_API_KEY is empty")
	}

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		e.BaseURL, url.PathEscape(e.Model), url.QueryEscape(e.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", redactKey(err, e.APIKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		var ae apiError
		if json.Unmarshal(x, &ae) == nil && ae.Error.Message != "" {
			return "", fmt.Errorf("gemini %d: %s", resp.StatusCode, ae.Error.Message)
		}
		return "", fmt.Errorf("gemini %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}

	for _, c := range out.Candidates {
		if c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if strings.TrimSpace(sb.String()) != "" {
			return sb.String(), nil
		}
	}
	return "", analysis.ErrEmptyResponse
}

// redactKey keeps the API key out of *url.Error messages, which quote the URL.
func redactKey(err error, key string) error {
	var ue *url.Error
	if key != "" && errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(key), "REDACTED")
	}
	return err
}
