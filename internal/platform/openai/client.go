package openai

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

	"github.com/yungbote/station-marker/internal/platform/ctxutil"
	"github.com/yungbote/station-marker/internal/platform/logger"
)

const responsesPath = "/v1/responses"

var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds a single call. Zero means no client-side timeout.
	Timeout time.Duration
}

// Request is one structured-generation call against the Responses API.
type Request struct {
	System string
	User   string
	// SchemaName and Schema enable json_schema constrained output when both are set.
	SchemaName string
	Schema     map[string]any
}

// Response carries the undecoded envelope. Interpreting it is left to the caller.
type Response struct {
	StatusCode int
	Body       json.RawMessage
	Model      string
	Duration   time.Duration
}

// Client is the generation-service client used by the marking pipeline.
type Client interface {
	Respond(ctx context.Context, req Request) (Response, error)
}

// HTTPError is a non-2xx answer from the service. Body is kept verbatim.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// TransportError means the call never produced an HTTP response (dial, TLS, IO).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("openai transport (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg Config, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-5-mini"
	}
	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textOptions struct {
	Format map[string]any `json:"format,omitempty"`
}

// No temperature: several reasoning models reject it and correctness must not depend on it.
type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Text  *textOptions   `json:"text,omitempty"`
}

func (c *client) buildRequest(req Request) responsesRequest {
	body := responsesRequest{Model: c.model}
	if s := strings.TrimSpace(req.System); s != "" {
		body.Input = append(body.Input, inputMessage{Role: "system", Content: s})
	}
	body.Input = append(body.Input, inputMessage{Role: "user", Content: req.User})
	if strings.TrimSpace(req.SchemaName) != "" && req.Schema != nil {
		body.Text = &textOptions{Format: map[string]any{
			"type":   "json_schema",
			"name":   req.SchemaName,
			"schema": req.Schema,
			"strict": true,
		}}
	}
	return body
}

func (c *client) Respond(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, ErrMissingAPIKey
	}
	start := time.Now()
	body := c.buildRequest(req)

	resp, raw, err := c.doOnce(ctx, http.MethodPost, responsesPath, body)
	out := Response{Body: raw, Model: body.Model, Duration: time.Since(start)}
	if resp != nil {
		out.StatusCode = resp.StatusCode
	}

	fields := []interface{}{
		"model", body.Model,
		"status", out.StatusCode,
		"duration_ms", out.Duration.Milliseconds(),
		"schema", body.Text != nil,
	}
	if rid := ctxutil.RequestID(ctx); rid != "" {
		fields = append(fields, "request_id", rid)
	}
	if err != nil {
		c.log.Warn("OpenAI request failed", append(fields, "error", err.Error())...)
		return out, err
	}
	in, outTok := extractUsageFromRaw(raw)
	c.log.Debug("OpenAI request ok", append(fields, "input_tokens", in, "output_tokens", outTok)...)
	return out, nil
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, fmt.Errorf("openai encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("openai build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Op: "do", Err: err}
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, &TransportError{Op: "read", Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func extractUsageFromRaw(raw []byte) (int, int) {
	if len(raw) == 0 {
		return 0, 0
	}
	var payload struct {
		Usage map[string]any `json:"usage"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Usage == nil {
		return 0, 0
	}
	inTokens := intFromAny(payload.Usage["input_tokens"])
	outTokens := intFromAny(payload.Usage["output_tokens"])
	if inTokens == 0 && outTokens == 0 {
		inTokens = intFromAny(payload.Usage["prompt_tokens"])
		outTokens = intFromAny(payload.Usage["completion_tokens"])
	}
	return inTokens, outTokens
}

func intFromAny(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
