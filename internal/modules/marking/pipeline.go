package marking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/station-marker/internal/platform/ctxutil"
	"github.com/yungbote/station-marker/internal/platform/logger"
	"github.com/yungbote/station-marker/internal/stations"
)

var tracer = otel.Tracer("github.com/yungbote/station-marker/internal/modules/marking")

// Catalog is the read-only station source.
type Catalog interface {
	Lookup(id string) (stations.Station, error)
	DefaultStation() string
}

type Options struct {
	Catalog   Catalog
	Generator Generator
	Scoring   ScoringConfig
	// Credential is the outbound bearer credential. Empty fails every request with a configuration error.
	Credential string
	// RequireAllAnswers rejects submissions that leave any station question blank.
	RequireAllAnswers bool
	// Strategies overrides DefaultStrategies.
	Strategies []ExtractStrategy
	Log        *logger.Logger
}

// Pipeline runs normalize → compile → generate → extract → validate → assemble.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	catalog           Catalog
	gen               Generator
	scoring           ScoringConfig
	credential        string
	requireAllAnswers bool
	strategies        []ExtractStrategy
	log               *logger.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("marking: catalog required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("marking: generator required")
	}
	if opts.Log == nil {
		return nil, fmt.Errorf("marking: logger required")
	}
	if err := opts.Scoring.Validate(); err != nil {
		return nil, fmt.Errorf("marking: %w", err)
	}
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Pipeline{
		catalog:           opts.Catalog,
		gen:               opts.Generator,
		scoring:           opts.Scoring,
		credential:        strings.TrimSpace(opts.Credential),
		requireAllAnswers: opts.RequireAllAnswers,
		strategies:        strategies,
		log:               opts.Log.With("service", "MarkingPipeline"),
	}, nil
}

// Mark grades one decoded request body. Every failure is a *Error.
func (p *Pipeline) Mark(ctx context.Context, body map[string]any) (FinalPayload, error) {
	ctx, span := tracer.Start(ctx, "marking.Mark")
	defer span.End()

	out, err := p.mark(ctx, span, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		fields := []interface{}{"kind", KindOf(err), "error", err.Error()}
		if rid := ctxutil.RequestID(ctx); rid != "" {
			fields = append(fields, "request_id", rid)
		}
		var me *Error
		if errors.As(err, &me) && me.Raw != "" {
			p.log.Debug("marking raw model output", "raw", me.Raw)
		}
		if KindOf(err) == KindValidation {
			p.log.Info("marking rejected", fields...)
		} else {
			p.log.Warn("marking failed", fields...)
		}
	}
	return out, err
}

// CheckConfigured fails with a configuration error when no outbound credential is set.
func (p *Pipeline) CheckConfigured() error {
	if p.credential == "" {
		return configurationError("Missing OPENAI_API_KEY in environment variables.")
	}
	return nil
}

func (p *Pipeline) mark(ctx context.Context, span trace.Span, body map[string]any) (FinalPayload, error) {
	if err := p.CheckConfigured(); err != nil {
		return FinalPayload{}, err
	}

	sub, err := Normalize(body)
	if err != nil {
		return FinalPayload{}, err
	}
	if sub.StationID == "" {
		sub.StationID = p.catalog.DefaultStation()
	}
	st, err := p.catalog.Lookup(sub.StationID)
	if err != nil {
		if errors.Is(err, stations.ErrStationNotFound) {
			return FinalPayload{}, validationError(fmt.Sprintf("unknown station %q", sub.StationID), stationRule.Field)
		}
		return FinalPayload{}, configurationError(err.Error())
	}
	if p.requireAllAnswers {
		if err := checkComplete(sub, st); err != nil {
			return FinalPayload{}, err
		}
	}
	span.SetAttributes(
		attribute.String("station.id", st.ID),
		attribute.Int("submission.answered", len(sub.Answers)),
	)

	req, err := Compile(sub, st, p.scoring)
	if err != nil {
		return FinalPayload{}, configurationError(err.Error())
	}

	envelope, err := p.generate(ctx, req)
	if err != nil {
		return FinalPayload{}, err
	}

	text, strategy, ok := Extract(envelope, p.strategies)
	if !ok {
		return FinalPayload{}, noOutputError(envelope)
	}
	span.SetAttributes(attribute.String("extract.strategy", strategy))

	res, err := Validate(text, p.scoring, req.Contract)
	if err != nil {
		return FinalPayload{}, err
	}

	p.log.Info("marking complete",
		"station_id", st.ID,
		"candidate_name", sub.CandidateName,
		"overall", res.Overall,
		"overall_derived", res.OverallDerived,
		"extract_strategy", strategy,
		"request_id", ctxutil.RequestID(ctx),
	)
	return Assemble(res, st, sub, p.scoring), nil
}

// generate issues the one outbound call. Caller cancellation is not
// propagated; once issued, a call runs to completion or transport failure.
func (p *Pipeline) generate(ctx context.Context, req GradingRequest) ([]byte, error) {
	ctx, span := tracer.Start(context.WithoutCancel(ctx), "marking.generate")
	defer span.End()

	envelope, err := p.gen.Generate(ctx, req)
	if err != nil {
		me := classifyGenerateError(err)
		span.RecordError(me)
		span.SetStatus(codes.Error, string(me.Kind))
		return nil, me
	}
	return envelope, nil
}
