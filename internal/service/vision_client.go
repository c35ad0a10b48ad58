package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"quadledger/pkg/config"

	"go.uber.org/zap"
)

// VisionModel is the external model that reads an invoice image and answers
// with free-form text. Implementations must be safe for concurrent use;
// tests substitute a deterministic fake.
type VisionModel interface {
	DescribeImage(ctx context.Context, page PageImage, prompt string) (string, error)
}

// OpenAIVisionClient calls an OpenAI-compatible chat completions endpoint
// with a single base64-encoded image attachment.
type OpenAIVisionClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	logger     *zap.Logger
}

func NewOpenAIVisionClient(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIVisionClient {
	return &OpenAIVisionClient{
		// The model call is the pipeline's only suspension point; the client
		// timeout bounds it so a stuck call cannot hold a worker.
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		logger:     logger,
	}
}

const visionMaxTokens = 500

// DescribeImage submits the image and prompt as one chat completion request
// and returns the raw text of the first choice. No retries are attempted.
func (c *OpenAIVisionClient) DescribeImage(ctx context.Context, page PageImage, prompt string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", page.MediaType, base64.StdEncoding.EncodeToString(page.Data))

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
		"max_tokens": visionMaxTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call vision API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision API failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var completionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no response from vision API")
	}

	text := strings.TrimSpace(completionResp.Choices[0].Message.Content)

	c.logger.Debug("Vision API response received",
		zap.String("model", c.model),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}
