package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dosecare/dosecare-backend/internal/config"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

// Notification is one push message addressed to a device token.
type Notification struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Client delivers reminder notifications to user devices. Delivery failures
// are logged by callers but never block event creation.
type Client interface {
	Send(ctx context.Context, n Notification) error
}

type client struct {
	log        *logger.Logger
	baseURL    string
	serverKey  string
	httpClient *http.Client
}

func NewClient(cfg config.PushConfig, log *logger.Logger) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://fcm.googleapis.com"
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &client{
		log:        log.With("service", "PushClient"),
		baseURL:    baseURL,
		serverKey:  strings.TrimSpace(cfg.ServerKey),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (c *client) Send(ctx context.Context, n Notification) error {
	if strings.TrimSpace(n.Token) == "" {
		return fmt.Errorf("device token required")
	}
	if c.serverKey == "" {
		return fmt.Errorf("missing PUSH_SERVER_KEY")
	}

	var body bytes.Buffer
	msg := fcmMessage{
		To:           n.Token,
		Notification: fcmNotification{Title: n.Title, Body: n.Body},
		Data:         n.Data,
	}
	if err := json.NewEncoder(&body).Encode(msg); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fcm/send", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push http %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
