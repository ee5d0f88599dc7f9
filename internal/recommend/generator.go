package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gamescout/backend/internal/upstream"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo-instruct"
	serviceName    = "openai"

	promptTemplate = `Suggest me 5 popular games of the same genre or mood as %s.
Make sure to add a small description. Make sure to suggest games that are not already in the list.
"""
You can use the following template: 1. Name - Description.
For example: 1. The Last of Us - A post-apocalyptic survival horror game.
"""`
)

var (
	errEmptySeedTitle = errors.New("recommend: seed title must not be empty")

	// ErrAPIKeyMissing reports an unconfigured completion-service credential.
	// The failure is per-request and instructive, never retried.
	ErrAPIKeyMissing = errors.New("recommend: completion api key not configured, set GAMESCOUT_OPENAI_API_KEY")

	// ErrEmptyCompletion reports a completion response with no usable text.
	ErrEmptyCompletion = errors.New("recommend: completion service returned no text")
)

type completionRequest struct {
	Model            string  `json:"model"`
	Prompt           string  `json:"prompt"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
	N                int     `json:"n"`
	Stream           bool    `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Config bundles configuration required to instantiate a Generator. APIKey is
// checked per call rather than at construction so the rest of the API works
// without the credential.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Generator produces game suggestions from a text-completion service.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGenerator constructs a recommendation generator.
func NewGenerator(cfg Config) *Generator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Generate asks the completion service for five games similar to the seed
// title and parses the numbered "Name - Description" lines it returns.
func (g *Generator) Generate(ctx context.Context, seedTitle string) ([]Suggestion, error) {
	trimmed := strings.TrimSpace(seedTitle)
	if trimmed == "" {
		return nil, errEmptySeedTitle
	}
	if g.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	payload := completionRequest{
		Model:            g.model,
		Prompt:           fmt.Sprintf(promptTemplate, trimmed),
		Temperature:      0.7,
		MaxTokens:        200,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		N:                1,
		Stream:           false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("recommend: encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("recommend: build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+g.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := g.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("recommend: request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, upstream.NewError(serviceName, response.StatusCode, response.Status)
	}

	var completion completionResponse
	if err := json.NewDecoder(response.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("recommend: decode response: %w", err)
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Text) == "" {
		return nil, ErrEmptyCompletion
	}

	suggestions := ParseSuggestions(completion.Choices[0].Text)
	g.logger.Debug("recommendations generated",
		zap.String("seed", trimmed),
		zap.Int("count", len(suggestions)))
	return suggestions, nil
}
