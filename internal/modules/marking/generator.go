package marking

import (
	"context"
	"errors"

	"github.com/yungbote/station-marker/internal/platform/openai"
)

// Generator performs the single outbound generation call and returns the raw envelope.
type Generator interface {
	Generate(ctx context.Context, req GradingRequest) ([]byte, error)
}

// OpenAIGenerator sends GradingRequests to the Responses API.
type OpenAIGenerator struct {
	Client openai.Client
	// UseSchema attaches the json_schema format. Some models reject it.
	UseSchema bool
}

func (g OpenAIGenerator) Generate(ctx context.Context, req GradingRequest) ([]byte, error) {
	r := openai.Request{System: req.System, User: req.User}
	if g.UseSchema {
		r.SchemaName = req.SchemaName
		r.Schema = req.Schema
	}
	resp, err := g.Client.Respond(ctx, r)
	return resp.Body, err
}

// classifyGenerateError maps client failures onto the marking taxonomy.
func classifyGenerateError(err error) *Error {
	var me *Error
	if errors.As(err, &me) {
		return me
	}
	if errors.Is(err, openai.ErrMissingAPIKey) {
		return configurationError(err.Error())
	}
	var httpErr *openai.HTTPError
	if errors.As(err, &httpErr) {
		return serviceError(httpErr.StatusCode, []byte(httpErr.Body))
	}
	return transportError(err)
}
