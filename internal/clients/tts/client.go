package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dosecare/dosecare-backend/internal/config"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

// Client turns reminder guidance text into spoken audio. Callers treat a
// failure here as non-fatal and fall back to text-only reminders.
type Client interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.TTSConfig, log *logger.Logger) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing TTS_BASE_URL")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &client{
		log:        log.With("service", "TTSClient"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audio_content"`
}

func (c *client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text required")
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(synthesizeRequest{Text: text}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tts http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed synthesizeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("tts decode error: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil || len(audio) == 0 {
		return nil, fmt.Errorf("tts response missing audio content")
	}
	return audio, nil
}
