package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"campaigner/internal/errors"
	"campaigner/pkg/channel/types"
)

// HTTPClient talks to the messaging channel's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(cfg types.ClientConfig) types.Client {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *HTTPClient) SendText(ctx context.Context, phone, text string) (string, error) {
	payload := map[string]interface{}{
		"phone": phone,
		"text":  text,
	}

	return c.sendRequest(ctx, "/api/sendText", payload)
}

func (c *HTTPClient) SendImage(ctx context.Context, phone, imagePath, caption string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	writer.WriteField("phone", phone)
	if caption != "" {
		writer.WriteField("caption", caption)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sendImage", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuth(req)

	return c.doSend(req, "/api/sendImage")
}

// HealthCheck verifies the channel API is reachable.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.NewChannelError("/api/health", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewChannelError("/api/health", resp.StatusCode, fmt.Errorf("unexpected status"))
	}
	return nil
}

func (c *HTTPClient) sendRequest(ctx context.Context, endpoint string, payload interface{}) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	return c.doSend(req, endpoint)
}

func (c *HTTPClient) doSend(req *http.Request, endpoint string) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.NewChannelError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	var result types.SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewChannelError(endpoint, resp.StatusCode, fmt.Errorf("%s", result.Error))
	}

	if result.ExternalID == "" {
		return "", errors.NewChannelError(endpoint, resp.StatusCode, fmt.Errorf("response missing externalId"))
	}

	return result.ExternalID, nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}
