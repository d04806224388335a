package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Instagram Graph API for a single business account.
// Publishing is two-phase: create a media container, then publish it.
type Client struct {
	BaseURL     string
	AccountID   string
	AccessToken string
	HTTPClient  *http.Client
}

func NewClient(baseURL, accountID, accessToken string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccountID:   accountID,
		AccessToken: accessToken,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// CreateContainer registers an image+caption media container and returns
// its id. The Graph API requires a hosted image for a feed post, so a
// missing URL fails here rather than with an opaque platform error.
func (c *Client) CreateContainer(ctx context.Context, imageURL, caption string) (string, error) {
	if err := c.checkCredentials(); err != nil {
		return "", err
	}
	if imageURL == "" {
		return "", fmt.Errorf("image_url is required to create a media container")
	}

	params := url.Values{}
	params.Set("image_url", imageURL)
	params.Set("caption", caption)

	return c.post(ctx, fmt.Sprintf("%s/%s/media", c.BaseURL, c.AccountID), params)
}

// PublishContainer confirms a previously created container and returns
// the resulting media id.
func (c *Client) PublishContainer(ctx context.Context, containerID string) (string, error) {
	if err := c.checkCredentials(); err != nil {
		return "", err
	}
	if containerID == "" {
		return "", fmt.Errorf("creation_id is required to publish")
	}

	params := url.Values{}
	params.Set("creation_id", containerID)

	return c.post(ctx, fmt.Sprintf("%s/%s/media_publish", c.BaseURL, c.AccountID), params)
}

func (c *Client) checkCredentials() error {
	if c.AccountID == "" || c.AccessToken == "" {
		return fmt.Errorf("instagram credentials are not configured")
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, params url.Values) (string, error) {
	params.Set("access_token", c.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	var graphResp graphResponse
	if err := json.Unmarshal(body, &graphResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response (status %d): %v", resp.StatusCode, err)
	}

	if graphResp.Error != nil {
		return "", fmt.Errorf("graph API error: %s (type: %s, code: %d)",
			graphResp.Error.Message, graphResp.Error.Type, graphResp.Error.Code)
	}
	if graphResp.ID == "" {
		return "", fmt.Errorf("graph API returned no id (status %d)", resp.StatusCode)
	}

	return graphResp.ID, nil
}
