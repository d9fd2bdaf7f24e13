package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/station-marker/internal/http/response"
	"github.com/yungbote/station-marker/internal/modules/marking"
	"github.com/yungbote/station-marker/internal/platform/apierr"
	"github.com/yungbote/station-marker/internal/platform/logger"
)

// Marker is the marking pipeline as seen by the HTTP layer.
type Marker interface {
	CheckConfigured() error
	Mark(ctx context.Context, body map[string]any) (marking.FinalPayload, error)
}

type MarkHandler struct {
	log    *logger.Logger
	marker Marker
}

func NewMarkHandler(log *logger.Logger, marker Marker) *MarkHandler {
	return &MarkHandler{log: log.With("handler", "MarkHandler"), marker: marker}
}

// MaxBodyBytes caps a marking request body.
const MaxBodyBytes = 256 << 10

// POST /api/mark
func (h *MarkHandler) Mark(c *gin.Context) {
	h.mark(c, func(p marking.FinalPayload) any { return p })
}

// POST /.netlify/functions/mark
// Serves the flat response shape existing serverless clients read.
func (h *MarkHandler) MarkLegacy(c *gin.Context) {
	h.mark(c, func(p marking.FinalPayload) any { return marking.LegacyView(p) })
}

func (h *MarkHandler) mark(c *gin.Context, view func(marking.FinalPayload) any) {
	if err := h.marker.CheckConfigured(); err != nil {
		response.RespondError(c, marking.ToAPIError(err))
		return
	}
	body, err := decodeBody(c)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.log.Info("rejecting oversized body", "limit", tooLarge.Limit)
		response.RespondError(c, apierr.New(http.StatusRequestEntityTooLarge, string(marking.KindValidation), errors.New("Request body too large.")))
		return
	}
	if err != nil {
		h.log.Info("rejecting undecodable body", "error", err)
		response.RespondError(c, apierr.New(http.StatusBadRequest, string(marking.KindValidation), errors.New("Invalid JSON body.")))
		return
	}
	out, err := h.marker.Mark(c.Request.Context(), body)
	if err != nil {
		response.RespondError(c, marking.ToAPIError(err))
		return
	}
	response.RespondOK(c, view(out))
}

// decodeBody reads a JSON object of at most MaxBodyBytes. An empty body decodes as {}.
func decodeBody(c *gin.Context) (map[string]any, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body is not a JSON object")
	}
	return body, nil
}

// Preflight answers OPTIONS with an empty 200.
func Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func MethodNotAllowed(c *gin.Context) {
	response.RespondError(c, apierr.New(http.StatusMethodNotAllowed, "", errors.New("Method not allowed. Use POST.")))
}
