// Package annotator asks the Gemini generative language API for a short
// summary, a one-word mood and a piece of advice about a journal entry.
package annotator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/go-resty/resty/v2"
)

var (
	ErrEmptyContent  = errors.New("entry content is empty")
	ErrNotConfigured = errors.New("AI annotation is not configured: API key is missing")
	ErrBadResponse   = errors.New("unexpected response from AI service")
)

const promptTemplate = `Analyze the following journal entry.
1. Provide a very brief 1-sentence summary.
2. Detect the overall mood (one word, e.g., 'Reflective', 'Joyful', 'Anxious').
3. Give a short, constructive, or stoic piece of advice based on the content (max 2 sentences).

Entry Title: %s
Entry Content: %s
`

type GeminiAnnotator struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewGeminiAnnotator(baseURL, apiKey, model string, timeout time.Duration) *GeminiAnnotator {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &GeminiAnnotator{client: c, apiKey: apiKey, model: model}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type schema struct {
	Type       string            `json:"type"`
	Properties map[string]schema `json:"properties,omitempty"`
	Required   []string          `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
	ResponseSchema   schema `json:"responseSchema"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func newRequest(title, body string) generateRequest {
	str := schema{Type: "STRING"}
	return generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, title, body)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: schema{
				Type:       "OBJECT",
				Properties: map[string]schema{"summary": str, "mood": str, "advice": str},
				Required:   []string{"summary", "mood", "advice"},
			},
		},
	}
}

// Annotate returns a complete insight or an error. Nothing is sent when the
// content is blank or no API key is configured. There is no retry.
func (a *GeminiAnnotator) Annotate(ctx context.Context, title, body string) (*models.Insight, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyContent
	}
	if a.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req := newRequest(title, body)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", a.apiKey).
		SetPathParam("model", a.model).
		SetBody(&req).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode(), resp.String())
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrBadResponse, err)
	}

	var text strings.Builder
	if len(gr.Candidates) > 0 {
		for _, p := range gr.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("%w: no response text", ErrBadResponse)
	}

	var ins models.Insight
	if err := json.Unmarshal([]byte(text.String()), &ins); err != nil {
		return nil, fmt.Errorf("%w: decode insight: %v", ErrBadResponse, err)
	}
	ins.Summary = strings.TrimSpace(ins.Summary)
	ins.Mood = strings.TrimSpace(ins.Mood)
	ins.Advice = strings.TrimSpace(ins.Advice)
	if ins.Summary == "" || ins.Mood == "" || ins.Advice == "" {
		return nil, fmt.Errorf("%w: incomplete insight", ErrBadResponse)
	}

	return &ins, nil
}
