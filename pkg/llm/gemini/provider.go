package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rag-assistant-be/pkg/llm"
)

// DefaultModel is used when neither the constructor nor the call override a model.
const DefaultModel = "gemini-1.5-flash"

const baseEndpoint = "https://generativelanguage.googleapis.com/v1/models"

type Provider struct {
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &Provider{}

func New(apiKey, modelName string) *Provider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Provider{
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (internal to this package) ---

type chatPart struct {
	Text string `json:"text"`
}

type chatContent struct {
	Parts []*chatPart `json:"parts"`
	Role  string      `json:"role"` // "user" or "model"
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type chatRequest struct {
	Contents          []*chatContent    `json:"contents"`
	SystemInstruction *chatContent      `json:"system_instruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type chatCandidate struct {
	Content *chatContent `json:"content"`
}

type chatResponse struct {
	Candidates []*chatCandidate `json:"candidates"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(opts)

	payload := chatRequest{
		GenerationConfig: &generationConfig{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		payload.GenerationConfig.MaxOutputTokens = options.MaxTokens
	}

	for _, msg := range history {
		content := &chatContent{
			Parts: []*chatPart{{Text: msg.Content}},
		}
		switch msg.Role {
		case llm.RoleSystem:
			// Gemini takes the system turn out of band.
			payload.SystemInstruction = content
			continue
		case llm.RoleAssistant:
			content.Role = "model"
		default:
			content.Role = "user"
		}
		payload.Contents = append(payload.Contents, content)
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseEndpoint, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"gemini error: status %d, body: %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes chatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil ||
		len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
