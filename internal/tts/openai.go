package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultSpeechEndpoint = "https://api.openai.com/v1/audio/speech"
	defaultSpeechModel    = "gpt-4o-mini-tts"

	speechInstructions = "Tone should be professional, relatable, and charismatic in line with a podcast host"
)

// OpenAIOptions configures optional client behavior.
type OpenAIOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIClient implements episodes.SpeechSynthesizer using OpenAI's speech API.
type OpenAIClient struct {
	logger     *slog.Logger
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI TTS client.
func NewOpenAIClient(logger *slog.Logger, apiKey, model string, opts *OpenAIOptions) *OpenAIClient {
	if opts == nil {
		opts = &OpenAIOptions{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 60 * time.Second,
		}
	}

	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = defaultSpeechEndpoint
	}

	if model == "" {
		model = defaultSpeechModel
	}

	return &OpenAIClient{
		logger:     logger,
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	Instructions   string `json:"instructions,omitempty"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize converts one dialogue line into a WAV clip.
func (c *OpenAIClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	payload, err := json.Marshal(speechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          voice,
		Instructions:   speechInstructions,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling speech API",
		slog.String("voice", voice),
		slog.Int("text_length", len(text)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call openai speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := string(body)
		if readErr != nil {
			bodyStr = fmt.Sprintf("(failed to read body: %v)", readErr)
		}
		c.logger.Error("speech API error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", bodyStr),
		)
		return nil, fmt.Errorf("openai speech error: status=%d body=%s", resp.StatusCode, bodyStr)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("openai speech returned empty audio")
	}

	c.logger.Debug("speech synthesized",
		slog.String("voice", voice),
		slog.Int("audio_bytes", len(audio)),
	)

	return audio, nil
}
