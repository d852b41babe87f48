package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrNotConfigured = errors.New("whatsapp client is not configured")

// Config holds Cloud API credentials.
type Config struct {
	APIURL        string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// ConfigFromViper reads whatsapp.* keys.
func ConfigFromViper() Config {
	timeoutSeconds := viper.GetInt("whatsapp.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 10
	}

	return Config{
		APIURL:        viper.GetString("whatsapp.api_url"),
		PhoneNumberID: viper.GetString("whatsapp.phone_number_id"),
		AccessToken:   viper.GetString("whatsapp.access_token"),
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
	}
}

// Client sends text messages through the WhatsApp Cloud API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client. Missing credentials are reported by Send, not here.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type textBody struct {
	Body string `json:"body"`
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the Cloud API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api returned %d: %s", e.StatusCode, e.Message)
}

// Send delivers body to the phone number and returns the provider message id.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if c.cfg.AccessToken == "" || c.cfg.PhoneNumberID == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(to, "+"),
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal whatsapp request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.APIURL, "/") + "/" + c.cfg.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call whatsapp api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read whatsapp response: %w", err)
	}

	var parsed sendResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}

		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Messages) == 0 {
		return "", nil
	}

	return parsed.Messages[0].ID, nil
}
