package marking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yungbote/station-marker/internal/platform/apierr"
	"github.com/yungbote/station-marker/internal/stations"
)

type QuestionInfo struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

type StationInfo struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timings     stations.Timings `json:"timings"`
	Questions   []QuestionInfo   `json:"questions"`
}

type ReferenceAnswer struct {
	Bullets      []string `json:"bullets"`
	Full         string   `json:"full"`
	BulletTarget string   `json:"bullet_target,omitempty"`
	FullTarget   string   `json:"full_target,omitempty"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ScoringSummary struct {
	Domains     []string    `json:"domains"`
	DomainRange Range       `json:"domain_range"`
	Overall     Range       `json:"overall_range"`
	OverallMode OverallMode `json:"overall_mode"`
}

// FinalPayload is the success body returned to callers.
type FinalPayload struct {
	Station          StationInfo                `json:"station"`
	CandidateName    string                     `json:"candidate_name,omitempty"`
	Scores           map[string]float64         `json:"scores"`
	Overall          float64                    `json:"overall"`
	Feedback         map[string]string          `json:"feedback"`
	ReferenceAnswers map[string]ReferenceAnswer `json:"reference_answers"`
	Scoring          ScoringSummary             `json:"scoring"`
}

// Assemble merges a validated result with the station's fixed reference
// answers. Neither input is modified.
func Assemble(res AssessmentResult, st stations.Station, sub Submission, cfg ScoringConfig) FinalPayload {
	out := FinalPayload{
		Station: StationInfo{
			ID:          st.ID,
			Title:       st.Title,
			Description: st.Description,
			Timings:     st.Timings,
		},
		CandidateName:    sub.CandidateName,
		Scores:           make(map[string]float64, len(res.Scores)),
		Overall:          res.Overall,
		Feedback:         make(map[string]string, len(res.Feedback)),
		ReferenceAnswers: make(map[string]ReferenceAnswer, len(st.Questions)),
		Scoring: ScoringSummary{
			Domains:     append([]string(nil), cfg.Domains...),
			DomainRange: Range{Min: cfg.DomainMin, Max: cfg.DomainMax},
			Overall:     Range{Min: cfg.OverallMin, Max: cfg.OverallMax},
			OverallMode: cfg.Overall,
		},
	}
	for k, v := range res.Scores {
		out.Scores[k] = v
	}
	for k, v := range res.Feedback {
		out.Feedback[k] = v
	}
	for _, q := range st.Questions {
		prompt := q.Prompt
		if custom := sub.Prompts[q.ID]; custom != "" {
			prompt = custom
		}
		out.Station.Questions = append(out.Station.Questions, QuestionInfo{ID: q.ID, Prompt: prompt})
		out.ReferenceAnswers[q.ID] = ReferenceAnswer{
			Bullets:      append([]string(nil), q.Reference.Bullets...),
			Full:         q.Reference.Full,
			BulletTarget: q.Reference.BulletTarget,
			FullTarget:   q.Reference.FullTarget,
		}
	}
	return out
}

// ToAPIError translates any pipeline failure into the caller-facing error.
func ToAPIError(err error) *apierr.Error {
	var me *Error
	if !errors.As(err, &me) {
		return apierr.New(http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
	msg := errors.New(me.Message)
	switch me.Kind {
	case KindValidation:
		return apierr.New(http.StatusBadRequest, string(me.Kind), msg).
			WithDetails(map[string]any{"fields": me.Fields})
	case KindConfiguration:
		return apierr.New(http.StatusInternalServerError, string(me.Kind), msg)
	case KindTransport:
		detail := ""
		if me.Err != nil {
			detail = me.Err.Error()
		}
		return apierr.New(http.StatusBadGateway, string(me.Kind), msg).WithDetails(detail)
	case KindService:
		status := me.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return apierr.New(status, string(me.Kind), msg).WithDetails(opaqueJSON(me.Envelope))
	case KindNoOutput:
		return apierr.New(http.StatusInternalServerError, string(me.Kind), msg).WithDetails(opaqueJSON(me.Envelope))
	case KindSchema:
		if me.Reason == ReasonUnparseable {
			msg = errors.New("Invalid model JSON")
		}
		return apierr.New(http.StatusInternalServerError, string(me.Kind), msg).
			WithDetails(map[string]any{"reason": me.Reason, "fields": me.Fields, "problems": me.Message}).
			WithRaw(me.Raw)
	default:
		return apierr.New(http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}

// opaqueJSON embeds a body as JSON when it is valid JSON and as a string otherwise.
func opaqueJSON(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
