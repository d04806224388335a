package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"instagram-agent-platform/internal/agent"
)

// OpenAIImageGenerator calls the OpenAI Images API and returns a hosted
// image URL for the media container. The agent treats image failures as
// degraded-continue, so this client just reports errors plainly.
type OpenAIImageGenerator struct {
	APIKey     string
	APIURL     string
	Size       string
	HTTPClient *http.Client
}

func NewOpenAIImageGenerator(apiKey, apiURL, size string) *OpenAIImageGenerator {
	return &OpenAIImageGenerator{
		APIKey: apiKey,
		APIURL: apiURL,
		Size:   size,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, prompt string) (*agent.ImageResult, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	jsonData, err := json.Marshal(imageRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           g.Size,
		ResponseFormat: "url",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	var imgResp imageResponse
	if err := json.Unmarshal(body, &imgResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}

	if imgResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (%s)", imgResp.Error.Message, imgResp.Error.Type)
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return nil, fmt.Errorf("no image in response")
	}

	altText := imgResp.Data[0].RevisedPrompt
	if altText == "" {
		altText = prompt
	}

	return &agent.ImageResult{
		URL:     imgResp.Data[0].URL,
		AltText: altText,
	}, nil
}
