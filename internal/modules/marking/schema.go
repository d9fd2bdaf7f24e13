package marking

const (
	overallKey     = "overall"
	feedbackPrefix = "feedback_"
	schemaName     = "station_assessment"
)

// FeedbackKey is the output key carrying feedback for one question.
func FeedbackKey(questionID string) string { return feedbackPrefix + questionID }

// Contract is the output shape the model is asked for and the validator enforces.
type Contract struct {
	Domains       []string
	QuestionIDs   []string
	ReportOverall bool
}

// RequiredKeys lists every top-level key in the order it is presented to the model.
func (c Contract) RequiredKeys() []string {
	keys := make([]string, 0, len(c.Domains)+len(c.QuestionIDs)+1)
	keys = append(keys, c.Domains...)
	if c.ReportOverall {
		keys = append(keys, overallKey)
	}
	for _, qid := range c.QuestionIDs {
		keys = append(keys, FeedbackKey(qid))
	}
	return keys
}

// JSONSchema renders the contract for json_schema constrained generation.
// OpenAI strict mode requires every property to be listed in required and
// additionalProperties=false. Bounds are enforced by the validator, not here.
func (c Contract) JSONSchema() map[string]any {
	props := map[string]any{}
	for _, d := range c.Domains {
		props[d] = numberSchema()
	}
	if c.ReportOverall {
		props[overallKey] = numberSchema()
	}
	for _, qid := range c.QuestionIDs {
		props[FeedbackKey(qid)] = stringSchema()
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             c.RequiredKeys(),
		"additionalProperties": false,
	}
}

func numberSchema() map[string]any {
	return map[string]any{"type": "number"}
}

func stringSchema() map[string]any {
	return map[string]any{"type": "string"}
}
