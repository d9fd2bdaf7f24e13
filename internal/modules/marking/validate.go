package marking

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AssessmentResult is model output that satisfied the contract.
type AssessmentResult struct {
	// Scores holds one entry per configured domain.
	Scores  map[string]float64
	Overall float64
	// OverallDerived is true when Overall was computed from Scores rather than reported.
	OverallDerived bool
	// Feedback maps question id to feedback text.
	Feedback map[string]string
}

// Validate parses the model text, repairing surrounding prose if needed, and
// checks it against the contract. Out-of-range scores are rejected, never clamped.
func Validate(raw string, cfg ScoringConfig, contract Contract) (AssessmentResult, error) {
	obj, err := parseObject(raw)
	if err != nil {
		repaired, ok := repairObject(raw)
		if !ok {
			return AssessmentResult{}, unparseableError(raw, err)
		}
		obj, err = parseObject(repaired)
		if err != nil {
			return AssessmentResult{}, unparseableError(raw, err)
		}
	}

	res := AssessmentResult{
		Scores:   make(map[string]float64, len(contract.Domains)),
		Feedback: make(map[string]string, len(contract.QuestionIDs)),
	}
	var problems, fields []string
	violate := func(field, msg string) {
		fields = append(fields, field)
		problems = append(problems, field+" "+msg)
	}

	for _, d := range contract.Domains {
		v, msg := boundedNumber(obj, d, cfg.DomainMin, cfg.DomainMax)
		if msg != "" {
			violate(d, msg)
			continue
		}
		res.Scores[d] = v
	}
	if contract.ReportOverall {
		v, msg := boundedNumber(obj, overallKey, cfg.OverallMin, cfg.OverallMax)
		if msg != "" {
			violate(overallKey, msg)
		} else {
			res.Overall = v
		}
	}
	for _, qid := range contract.QuestionIDs {
		key := FeedbackKey(qid)
		v, present := obj[key]
		if !present {
			violate(key, "is missing")
			continue
		}
		s, isString := v.(string)
		if !isString {
			violate(key, "must be a string")
			continue
		}
		if strings.TrimSpace(s) == "" {
			violate(key, "is empty")
			continue
		}
		res.Feedback[qid] = strings.TrimSpace(s)
	}

	if len(problems) > 0 {
		return AssessmentResult{}, contractViolation(raw, problems, fields)
	}

	if cfg.Overall == OverallSumScaled {
		res.Overall = cfg.deriveOverall(res.Scores)
		res.OverallDerived = true
	}
	return res, nil
}

func parseObject(text string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("null is not an object")
	}
	return obj, nil
}

// repairObject cuts from the first '{' to the last '}'.
func repairObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func boundedNumber(obj map[string]any, key string, min, max float64) (float64, string) {
	v, present := obj[key]
	if !present {
		return 0, "is missing"
	}
	f, isNumber := v.(float64)
	if !isNumber {
		return 0, "must be a number"
	}
	if f < min || f > max {
		return 0, fmt.Sprintf("is %s, outside [%s,%s]", formatNumber(f), formatNumber(min), formatNumber(max))
	}
	return f, ""
}
