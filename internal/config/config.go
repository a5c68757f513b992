// Package config loads the application's configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
)

// Config holds all runtime configuration for the server and worker.
type Config struct {
	// Port is the HTTP listen port for the API server.
	Port string

	// DBDSN is the Postgres connection string. Required.
	DBDSN string

	// RedisAddr is the Redis address backing the task queue.
	RedisAddr string

	// OpenAIAPIKey authenticates script generation and speech synthesis.
	// When empty the worker runs with offline stub clients.
	OpenAIAPIKey string

	// ScriptModel overrides the chat model used for script generation.
	ScriptModel string

	// SpeechModel overrides the text-to-speech model.
	SpeechModel string

	// FallbackVoice is used for dialogue lines whose speaker is not in
	// the episode's host roster.
	FallbackVoice string

	// S3Bucket enables the S3 blob store when set. Credentials and
	// region come from the standard AWS environment.
	S3Bucket string

	// S3Prefix is prepended to audio object keys.
	S3Prefix string

	// AudioDir is the local audio directory used when S3Bucket is empty.
	AudioDir string

	// RequestsPerMinute caps episode creation requests per client IP.
	RequestsPerMinute int
}

// Load reads configuration from the environment. It returns an error when
// a required variable is missing.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBDSN:             os.Getenv("DATABASE_URL"),
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		ScriptModel:       os.Getenv("SCRIPT_MODEL"),
		SpeechModel:       os.Getenv("SPEECH_MODEL"),
		FallbackVoice:     os.Getenv("FALLBACK_VOICE"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Prefix:          getEnv("S3_PREFIX", "audio"),
		AudioDir:          getEnv("AUDIO_DIR", "audio"),
		RequestsPerMinute: 30,
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
