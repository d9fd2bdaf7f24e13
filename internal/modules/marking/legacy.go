package marking

import "strings"

// legacyQuestionKey names a question the way the flat serverless response did:
// main, fu1, fu2, fu3.
func legacyQuestionKey(id string) string {
	if id == "main" {
		return id
	}
	return "fu" + strings.TrimPrefix(id, "f")
}

// legacyPromptKey names a question prompt inside the flat station object.
func legacyPromptKey(id string) string {
	if id == "main" {
		return "qMain"
	}
	return "q" + strings.TrimPrefix(id, "f")
}

// LegacyView renders a FinalPayload as the flat object served by the serverless
// function: domain scores, overall and feedback_<q> at the top level, reference
// answers as model_<q>_bullets / model_<q>_full, station prompts as qMain, q1...
func LegacyView(p FinalPayload) map[string]any {
	station := map[string]any{
		"title":       p.Station.Title,
		"description": p.Station.Description,
		"timings": map[string]string{
			"reading":   p.Station.Timings.Reading,
			"response":  p.Station.Timings.Response,
			"followups": p.Station.Timings.FollowUps,
		},
	}
	out := map[string]any{
		"station": station,
		"overall": p.Overall,
	}
	for _, d := range p.Scoring.Domains {
		out[d] = p.Scores[d]
	}
	for _, q := range p.Station.Questions {
		key := legacyQuestionKey(q.ID)
		station[legacyPromptKey(q.ID)] = q.Prompt
		out[FeedbackKey(key)] = p.Feedback[q.ID]
		ref := p.ReferenceAnswers[q.ID]
		bullets := ref.Bullets
		if bullets == nil {
			bullets = []string{}
		}
		out["model_"+key+"_bullets"] = bullets
		out["model_"+key+"_full"] = ref.Full
	}
	return out
}
