package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"podcastit/internal/episodes"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultScriptModel    = "gpt-4o-2024-08-06"
	defaultTemperature    = 0.7
	defaultMaxTokens      = 4096
)

const systemPrompt = "You are a podcast script writer. Given raw article content, a show title, " +
	"and a list of hosts, write an engaging multi-speaker podcast script covering the content. " +
	"Attribute every line to one of the provided host names and to no one else. " +
	"Always respond ONLY with JSON matching the schema " +
	"{\"dialogue\":[{\"hostName\":\"string\",\"dialogue\":\"string\"}]}. Do not add commentary."

// OpenAIOptions allows overriding HTTP behavior.
type OpenAIOptions struct {
	BaseURL     string
	HTTPClient  *http.Client
	Temperature float64
	MaxTokens   int
}

// OpenAIClient implements episodes.ScriptGenerator against OpenAI's Chat
// Completions API.
type OpenAIClient struct {
	logger      *slog.Logger
	apiKey      string
	model       string
	endpoint    string
	httpClient  *http.Client
	temperature float64
	maxTokens   int
}

// NewOpenAIClient constructs a new OpenAIClient.
func NewOpenAIClient(logger *slog.Logger, apiKey, model string, opts *OpenAIOptions) *OpenAIClient {
	if opts == nil {
		opts = &OpenAIOptions{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 90 * time.Second,
		}
	}

	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}

	if model == "" {
		model = defaultScriptModel
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &OpenAIClient{
		logger:      logger,
		apiKey:      apiKey,
		model:       model,
		endpoint:    endpoint,
		httpClient:  httpClient,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateScript sends the episode material to OpenAI and parses the JSON
// payload into a dialogue script.
func (c *OpenAIClient) GenerateScript(ctx context.Context, req episodes.ScriptRequest) (episodes.Script, error) {
	material, err := json.Marshal(req)
	if err != nil {
		return episodes.Script{}, fmt.Errorf("marshal material: %w", err)
	}

	reqPayload := completionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(material)},
		},
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return episodes.Script{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return episodes.Script{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return episodes.Script{}, fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return episodes.Script{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return episodes.Script{}, fmt.Errorf("openai error: status=%d body=%s", resp.StatusCode, truncate(respBody, 512))
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return episodes.Script{}, fmt.Errorf("decode response: %w body=%s", err, truncate(respBody, 256))
	}

	if completion.Error != nil {
		return episodes.Script{}, fmt.Errorf("openai error: %s (%s)", completion.Error.Message, completion.Error.Type)
	}

	if len(completion.Choices) == 0 {
		return episodes.Script{}, fmt.Errorf("openai returned no choices")
	}

	content := stripCodeFence(completion.Choices[0].Message.Content)

	var parsed episodes.Script
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return episodes.Script{}, fmt.Errorf("parse script json: %w content=%s", err, truncate([]byte(content), 256))
	}

	lines := make([]episodes.Line, 0, len(parsed.Dialogue))
	for _, line := range parsed.Dialogue {
		hostName := strings.TrimSpace(line.HostName)
		text := strings.TrimSpace(line.Text)
		if hostName == "" || text == "" {
			continue
		}
		lines = append(lines, episodes.Line{HostName: hostName, Text: text})
	}

	if len(lines) == 0 {
		return episodes.Script{}, episodes.ErrEmptyScript
	}

	c.logger.Debug("script generated",
		slog.String("model", c.model),
		slog.Int("lines", len(lines)),
	)

	return episodes.Script{Dialogue: lines}, nil
}

func stripCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		if idx := strings.Index(v, "\n"); idx != -1 {
			v = v[idx+1:]
		}
		v = strings.TrimSuffix(v, "```")
	}
	return strings.TrimSpace(v)
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "…"
}
