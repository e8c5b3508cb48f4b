// Package embeddings provides embedding generation via the Voyage AI API.
package embeddings

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Voyage AI API root.
	DefaultBaseURL = "https://api.voyageai.com/v1"

	// DefaultModel is the code-tuned embedding model used for error logs.
	DefaultModel = "voyage-code-2"

	// ModelDimensions is the vector width produced by DefaultModel.
	ModelDimensions = 1536
)

var (
	// ErrEmptyInput indicates empty or nil input texts
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Config holds configuration for the Voyage client.
type Config struct {
	// APIKey authenticates against the Voyage API. Required.
	APIKey string

	// Model is the embedding model to use.
	Model string

	// BaseURL is the base URL for the embedding API.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestsPerSecond caps outbound calls. Zero disables rate limiting.
	RequestsPerSecond float64
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second cannot be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Client calls the Voyage embeddings endpoint.
type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	metrics *Metrics
	logger  *zap.Logger
}

// NewClient creates a Voyage client with the given configuration.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		metrics: NewMetrics(logger),
		logger:  logger,
	}
	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return c, nil
}

// Model returns the configured embedding model name.
func (c *Client) Model() string {
	return c.config.Model
}

// voyageRequest is the request body for the embeddings endpoint.
type voyageRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type voyageEmbedding struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type voyageUsage struct {
	TotalTokens int `json:"total_tokens"`
}

type voyageResponse struct {
	Data  []voyageEmbedding `json:"data"`
	Model string            `json:"model"`
	Usage voyageUsage       `json:"usage"`
}

// EmbedQuery generates an embedding for a single text.
//
// Blank input (empty or whitespace-only) returns a nil vector with no error
// and no API call; callers use the nil vector as a signal that there is
// nothing to search for.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	vectors, err := c.embed(ctx, []string{text}, "embed_query")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments generates embeddings for multiple texts in one request.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	return c.embed(ctx, texts, "embed_documents")
}

func (c *Client) embed(ctx context.Context, texts []string, operation string) (_ [][]float64, genErr error) {
	start := time.Now()
	tokens := 0
	defer func() {
		c.metrics.RecordRequest(ctx, c.config.Model, operation, time.Since(start), len(texts), tokens, genErr)
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			genErr = fmt.Errorf("rate limiter: %w", err)
			return nil, genErr
		}
	}

	body, err := json.Marshal(voyageRequest{Input: texts, Model: c.config.Model})
	if err != nil {
		genErr = fmt.Errorf("marshaling request: %w", err)
		return nil, genErr
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		genErr = fmt.Errorf("creating request: %w", err)
		return nil, genErr
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		genErr = fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
		return nil, genErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		genErr = fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
		return nil, genErr
	}

	var parsed voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		genErr = fmt.Errorf("%w: decoding response: %v", ErrEmbeddingFailed, err)
		return nil, genErr
	}

	if len(parsed.Data) != len(texts) {
		genErr = fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingFailed, len(texts), len(parsed.Data))
		return nil, genErr
	}

	// The API tags each embedding with its input index; restore input order.
	vectors := make([][]float64, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			genErr = fmt.Errorf("%w: embedding index %d out of range", ErrEmbeddingFailed, item.Index)
			return nil, genErr
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			genErr = fmt.Errorf("%w: missing embedding for input %d", ErrEmbeddingFailed, i)
			return nil, genErr
		}
	}

	tokens = parsed.Usage.TotalTokens
	return vectors, nil
}
