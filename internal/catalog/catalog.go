package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	pkgstrings "codeassist/pkg/strings"
)

const (
	// DefaultHTTPTimeout is the default timeout for catalog requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ModelInfoPath is appended to the provider base URL.
	ModelInfoPath = "/v1/model/info"

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "opc-request-id"

	// maxErrorBody limits how much of an error response is quoted back.
	maxErrorBody = 512
)

// ErrNoModels is returned when the catalog lists nothing usable.
var ErrNoModels = errors.New("no usable models found")

// ModelInfo describes one model as stored in the provider settings.
type ModelInfo struct {
	MaxTokens           int64   `json:"max_output_tokens,omitempty"`
	ContextWindow       int64   `json:"max_input_tokens,omitempty"`
	SupportsImages      bool    `json:"supports_vision,omitempty"`
	SupportsPromptCache bool    `json:"supports_prompt_caching,omitempty"`
	InputPrice          float64 `json:"input_cost_per_token,omitempty"`
	OutputPrice         float64 `json:"output_cost_per_token,omitempty"`
	Description         string  `json:"description,omitempty"`
}

// Settings returns the model info in the shape the state store keeps.
func (m *ModelInfo) Settings() map[string]any {
	if m == nil {
		return nil
	}
	return map[string]any{
		"maxTokens":           m.MaxTokens,
		"contextWindow":       m.ContextWindow,
		"supportsImages":      m.SupportsImages,
		"supportsPromptCache": m.SupportsPromptCache,
		"inputPrice":          m.InputPrice,
		"outputPrice":         m.OutputPrice,
		"description":         m.Description,
	}
}

// Models maps model id to its info.
type Models map[string]*ModelInfo

// IDs returns the model ids in sorted order.
func (m Models) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type modelInfoResponse struct {
	Data []struct {
		ModelName string     `json:"model_name"`
		ModelInfo *ModelInfo `json:"model_info"`
	} `json:"data"`
}

// Client fetches the model catalog from the Code Assist API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures the catalog client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListModels fetches the models available at baseURL. apiKey is sent as a
// bearer token and requestID as the correlation header.
func (c *Client) ListModels(ctx context.Context, baseURL, apiKey, requestID string) (Models, error) {
	endpoint, err := modelInfoURL(baseURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	c.logger.Debug("Fetching model catalog", "url", endpoint, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("model catalog returned status %d: %s", resp.StatusCode, pkgstrings.OneLine(string(body), pkgstrings.DefaultMaxLen))
	}

	var parsed modelInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}

	models := make(Models, len(parsed.Data))
	for _, entry := range parsed.Data {
		if entry.ModelName == "" {
			continue
		}
		info := entry.ModelInfo
		if info == nil {
			info = &ModelInfo{}
		}
		models[entry.ModelName] = info
	}

	c.logger.Debug("Fetched model catalog", "count", len(models))
	return models, nil
}

// SelectDefault picks preferred if the catalog has it, otherwise the first
// model id in sorted order.
func SelectDefault(models Models, preferred string) (string, *ModelInfo, error) {
	if info, ok := models[preferred]; ok {
		return preferred, info, nil
	}
	ids := models.IDs()
	if len(ids) == 0 {
		return "", nil, ErrNoModels
	}
	return ids[0], models[ids[0]], nil
}

func modelInfoURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("no API base URL configured")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + ModelInfoPath
	u.RawQuery = ""
	return u.String(), nil
}
