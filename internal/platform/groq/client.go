package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/phrazzld/microlesson-api/internal/redact"
)

// Defaults applied by NewClient to zero-valued Config fields.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
	DefaultTimeout = 60 * time.Second

	// Temperature is fixed for every request.
	Temperature = 0.7

	// MsgMissingAPIKey is the failure message when no key is configured.
	MsgMissingAPIKey = "GROQ_API_KEY is not configured"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 4 << 20
)

// Config holds the client settings. APIKey may be empty; Send then fails
// with a configuration failure without touching the network.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client sends prompts to Groq through the OpenAI SDK. It is safe for
// concurrent use.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	sdk        openai.Client
	logger     *slog.Logger
}

var _ generation.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The configured timeout
// is not applied to a client passed this way.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config, log *slog.Logger, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.With(slog.String("component", "groq")),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sdk = openai.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithAPIKey(c.apiKey),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	)
	return c
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// capturedResponse records the status and body of the provider's reply so
// error bodies reach the extractor unchanged.
type capturedResponse struct {
	status int
	body   []byte
}

func (cr *capturedResponse) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil {
		return resp, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	cr.status = resp.StatusCode
	cr.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// Send posts prompt as a single user message and returns the decoded
// response body.
func (c *Client) Send(ctx context.Context, prompt string) (generation.Envelope, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.apiKey == "" {
		return nil, generation.NewFailure(generation.KindConfiguration, MsgMissingAPIKey)
	}

	var (
		captured capturedResponse
		raw      []byte
	)
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(Temperature),
	}

	start := time.Now()
	_, err := c.sdk.Chat.Completions.New(ctx, params,
		option.WithResponseBodyInto(&raw),
		option.WithMiddleware(captured.middleware))

	if captured.status == 0 {
		if err == nil {
			err = errors.New("provider returned no response")
		}
		log.Error("provider request failed",
			redact.ErrorAttr(err),
			slog.Duration("elapsed", time.Since(start)))
		return nil, generation.NewFailure(generation.KindTransport, err.Error())
	}

	ok := captured.status >= 200 && captured.status <= 299
	body := captured.body
	if ok && raw != nil {
		body = raw
	}

	log.Debug("provider responded",
		slog.Int("status", captured.status),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	if !json.Valid(body) {
		if !ok {
			return nil, generation.NewFailure(generation.KindTransport,
				fmt.Sprintf("provider returned status %d", captured.status))
		}
		return nil, generation.NewFailure(generation.KindTransport, "provider response is not valid JSON")
	}

	if !ok {
		log.Warn("provider returned error status", slog.Int("status", captured.status))
	}
	return generation.Envelope(body), nil
}
