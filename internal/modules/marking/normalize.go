package marking

import (
	"fmt"
	"strings"

	"github.com/yungbote/station-marker/internal/stations"
)

// Submission is one candidate's attempt at one station.
type Submission struct {
	StationID     string
	CandidateName string
	// Answers maps question id to trimmed answer text. Unanswered questions are absent.
	Answers map[string]string
	// Prompts holds caller-supplied question text overriding the station's prompt.
	Prompts map[string]string
}

func (s Submission) Answer(questionID string) string { return s.Answers[questionID] }

// aliasRule lists the request keys that may carry one logical field, in
// precedence order. Dotted keys address one level of nesting.
type aliasRule struct {
	Field string
	Keys  []string
}

var (
	stationRule   = aliasRule{Field: "stationId", Keys: []string{"stationId", "station_id", "station"}}
	candidateRule = aliasRule{Field: "candidateName", Keys: []string{"candidateName", "candidate_name", "name"}}

	answerRules = map[string]aliasRule{
		"main": {Field: "answers.main", Keys: []string{"answers.main", "aMain", "answer_main", "answer", "candidate_answer", "candidateAnswer"}},
		"f1":   {Field: "answers.f1", Keys: []string{"answers.f1", "a1", "answer_f1", "fu1"}},
		"f2":   {Field: "answers.f2", Keys: []string{"answers.f2", "a2", "answer_f2", "fu2"}},
		"f3":   {Field: "answers.f3", Keys: []string{"answers.f3", "a3", "answer_f3", "fu3"}},
	}

	promptRules = map[string]aliasRule{
		"main": {Field: "customPrompts.main", Keys: []string{"customPrompts.main", "custom_prompts.main", "qMain"}},
		"f1":   {Field: "customPrompts.f1", Keys: []string{"customPrompts.f1", "custom_prompts.f1", "q1"}},
		"f2":   {Field: "customPrompts.f2", Keys: []string{"customPrompts.f2", "custom_prompts.f2", "q2"}},
		"f3":   {Field: "customPrompts.f3", Keys: []string{"customPrompts.f3", "custom_prompts.f3", "q3"}},
	}
)

type resolved struct {
	value    string
	declared bool
}

// resolve returns the first non-empty string among the rule's keys.
// declared is true when any key was present with a string value.
func (r aliasRule) resolve(body map[string]any) (resolved, error) {
	var out resolved
	for _, key := range r.Keys {
		raw, ok := lookupKey(body, key)
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			return out, fmt.Errorf("%s must be a string", key)
		}
		out.declared = true
		if v := strings.TrimSpace(s); v != "" {
			out.value = v
			return out, nil
		}
	}
	return out, nil
}

func lookupKey(body map[string]any, key string) (any, bool) {
	parent, child, nested := strings.Cut(key, ".")
	if !nested {
		v, ok := body[key]
		return v, ok
	}
	inner, ok := body[parent].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := inner[child]
	return v, ok
}

// Normalize turns a decoded request body into a Submission. It trims every
// field, applies the alias table and rejects a blank main answer or a
// declared-but-blank custom prompt.
func Normalize(body map[string]any) (Submission, error) {
	if body == nil {
		body = map[string]any{}
	}
	sub := Submission{Answers: map[string]string{}, Prompts: map[string]string{}}

	var problems, fields []string
	fail := func(field, msg string) {
		fields = append(fields, field)
		problems = append(problems, msg)
	}

	if r, err := stationRule.resolve(body); err != nil {
		fail(stationRule.Field, err.Error())
	} else {
		sub.StationID = r.value
	}
	if r, err := candidateRule.resolve(body); err != nil {
		fail(candidateRule.Field, err.Error())
	} else {
		sub.CandidateName = r.value
	}

	for _, qid := range stations.QuestionIDs {
		ar := answerRules[qid]
		a, err := ar.resolve(body)
		switch {
		case err != nil:
			fail(ar.Field, err.Error())
		case a.value != "":
			sub.Answers[qid] = a.value
		case qid == "main":
			fail(ar.Field, "main answer is required")
		}

		pr := promptRules[qid]
		p, err := pr.resolve(body)
		switch {
		case err != nil:
			fail(pr.Field, err.Error())
		case p.value != "":
			sub.Prompts[qid] = p.value
		case p.declared:
			fail(pr.Field, fmt.Sprintf("custom prompt for %s is empty", qid))
		}
	}

	if len(problems) > 0 {
		return Submission{}, validationError(strings.Join(problems, "; "), fields...)
	}
	return sub, nil
}

// checkComplete enforces that every question the station defines was answered.
func checkComplete(sub Submission, st stations.Station) error {
	var fields []string
	for _, q := range st.Questions {
		if sub.Answer(q.ID) == "" {
			fields = append(fields, answerRules[q.ID].Field)
		}
	}
	if len(fields) > 0 {
		return validationError("Please fill in ALL answer boxes before generating feedback.", fields...)
	}
	return nil
}
