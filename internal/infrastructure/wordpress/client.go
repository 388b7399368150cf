package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linkscribe/backend/internal/domain"
)

// Client publishes posts and media through the WordPress REST API using an
// application password
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

// NewClient creates a WordPress API client. baseURL is the site root, e.g.
// "https://blog.example.com".
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
	}
}

type mediaResponse struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// UploadMedia uploads one image and returns its media id and public URL
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte, contentType string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wp-json/wp/v2/media", bytes.NewReader(data))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create media request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	body, err := c.do(req)
	if err != nil {
		return 0, "", err
	}

	var media mediaResponse
	if err := json.Unmarshal(body, &media); err != nil {
		return 0, "", fmt.Errorf("%w: decoding media response: %v", domain.ErrPublishFailure, err)
	}
	return media.ID, media.SourceURL, nil
}

// CreatePost creates a post and returns its public link
func (c *Client) CreatePost(ctx context.Context, post domain.Post) (string, error) {
	payload, err := json.Marshal(post)
	if err != nil {
		return "", fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create post request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var created postResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: decoding post response: %v", domain.ErrPublishFailure, err)
	}
	return created.Link, nil
}

// do executes a request and returns the body, mapping failures onto
// domain.ErrPublishFailure
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPublishFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrPublishFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrPublishFailure, resp.StatusCode, snippet)
	}

	return body, nil
}
