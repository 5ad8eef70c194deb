package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dosecare/dosecare-backend/internal/config"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

// Mode selects the recognizer pipeline on the OCR service.
const (
	ModePrescription = "prescription"
	ModeEnvelope     = "envelope"
)

// Client submits a prescription or medication-envelope photo to the OCR
// service and returns the raw recognized payload. The payload shape differs
// by mode; parsing it is the parser package's job.
type Client interface {
	Recognize(ctx context.Context, image []byte, filename, mode string) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.OCRConfig, log *logger.Logger) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing OCR_BASE_URL")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &client{
		log:        log.With("service", "OCRClient"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *client) Recognize(ctx context.Context, image []byte, filename, mode string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image required")
	}
	if mode != ModePrescription && mode != ModeEnvelope {
		return "", fmt.Errorf("unknown ocr mode %q", mode)
	}
	if filename == "" {
		filename = "upload.jpg"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := writer.WriteField("mode", mode); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr http %d: %s", resp.StatusCode, string(raw))
	}
	return string(raw), nil
}
