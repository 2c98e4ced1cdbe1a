// Package gemini is the boundary adapter to the external generative model.
// It owns timeouts, retries and the translation of upstream failures into
// the service error taxonomy; nothing above it sees raw SDK errors.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/accountant-ai/backend/internal/common"
)

// DefaultModel is the model used when configuration does not override it.
const DefaultModel = "gemini-2.0-flash"

// DefaultTimeout bounds a single upstream call, retries excluded.
const DefaultTimeout = 30 * time.Second

// Config holds the gateway configuration, read once at startup.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client wraps the genai SDK with retry, timeout and error classification.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retry   common.RetryOptions
	log     zerolog.Logger
}

// NewClient creates a gateway client. The API key is required; model and
// timeout fall back to defaults.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retry:   common.DefaultRetryOptions(),
		log:     log,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends an assembled prompt and returns the model's text. Failures
// come back classified into the common taxonomy.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 2048,
	}
	return c.generate(ctx, contents, config)
}

// classifyPrompt constrains the model to a single routing label.
const classifyPrompt = `Classify the following personal finance question into exactly one of these labels:
spending, budgeting, investing, general

Respond with ONLY the label, lowercase, no punctuation, no explanation.

Question: %s`

// Classify asks the model for one of the four routing labels. The caller
// validates the label and falls back on anything unexpected.
func (c *Client) Classify(ctx context.Context, query string) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: fmt.Sprintf(classifyPrompt, query)}}},
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.0),
		MaxOutputTokens: 8,
	}
	return c.generate(ctx, contents, config)
}

// ExtractReceipt sends receipt image bytes through the vision path and
// returns the validated structured fields.
func (c *Client) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (ReceiptFields, error) {
	if len(image) == 0 {
		return ReceiptFields{}, common.Validationf("receipt image is empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.0),
		MaxOutputTokens: 1024,
	}

	raw, err := c.generate(ctx, contents, config)
	if err != nil {
		return ReceiptFields{}, err
	}
	return parseReceipt(raw)
}

// generate runs one model call with the bounded timeout and retry policy.
func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	var text string

	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.Models.GenerateContent(callCtx, c.model, contents, config)
		if err != nil {
			classified := classifyError(err)
			c.log.Warn().Err(err).Str("model", c.model).Msg("Model call failed")
			return classified
		}

		text = resp.Text()
		if text == "" {
			return fmt.Errorf("%w: empty response from model", common.ErrInvalidResponse)
		}
		return nil
	}, c.retry)
	if err != nil {
		return "", err
	}

	return text, nil
}
