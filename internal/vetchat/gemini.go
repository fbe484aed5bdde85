package vetchat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	geminiDefaultTimeout = 15 * time.Second
	geminiProviderName   = "gemini"

	systemPrompt = "You are a veterinary assistant for a pet-care marketplace. " +
		"Give practical, cautious advice about pet health and always recommend " +
		"seeing a veterinarian for anything that could be serious."
)

// GeminiOptions configures a GeminiResponder.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Responder
}

// GeminiResponder answers via the Gemini generateContent endpoint, deferring
// to its fallback on failure.
type GeminiResponder struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback Responder
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    float64 `json:"temperature,omitempty"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiResponder builds a responder against the Gemini HTTP API.
func NewGeminiResponder(opts GeminiOptions) (*GeminiResponder, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiResponder{
		apiKey:   opts.APIKey,
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: opts.Fallback,
	}, nil
}

func (g *GeminiResponder) Name() string { return geminiProviderName }

// Answer sends the system prompt, prior history and the question, returning
// the first candidate's text. Provider failures fall through to the fallback
// responder when one is configured.
func (g *GeminiResponder) Answer(ctx context.Context, question string, history []Message) (string, error) {
	answer, err := g.call(ctx, question, history)
	if err != nil && g.fallback != nil {
		return g.fallback.Answer(ctx, question, history)
	}
	return answer, err
}

func (g *GeminiResponder) call(ctx context.Context, question string, history []Message) (string, error) {
	contents := make([]geminiContent, 0, len(history)+2)
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: systemPrompt}},
	})
	for _, m := range history {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Text}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: question}}})

	payload := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    0.4,
			CandidateCount: 1,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("vetchat: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("vetchat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vetchat: call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vetchat: gemini status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("vetchat: decode response: %w", err)
	}
	for _, c := range parsed.Candidates {
		for _, p := range c.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return strings.TrimSpace(p.Text), nil
			}
		}
	}
	return "", errors.New("vetchat: empty gemini response")
}
