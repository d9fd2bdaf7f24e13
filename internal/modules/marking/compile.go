package marking

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/yungbote/station-marker/internal/stations"
)

// NoAnswerMarker stands in for an unanswered question so it is still graded.
const NoAnswerMarker = "[no answer provided]"

// GradingRequest is the compiled instruction for one outbound call.
type GradingRequest struct {
	StationID  string
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
	Contract   Contract
}

const systemText = `
{{.Examiner}}
Mark the candidate strictly against the fixed rubric and scoring rules you are given.
Judge only what the candidate actually wrote; never invent content on their behalf.
Return STRICT JSON only (no markdown, no extra text).`

const userText = `
Station:
Title: {{.Title}}
Timings: Reading {{.Timings.Reading}}, Response {{.Timings.Response}}, Follow-ups {{.Timings.FollowUps}}
Description: {{.Description}}

Questions:
{{- range .Questions}}
{{.Label}}: {{.Prompt}}
{{- end}}

Candidate ({{.Candidate}}) answers:
{{- range .Questions}}

{{.Label}} ANSWER:
{{.Answer}}
{{- end}}

Mark using {{len .Domains}} domains scored {{.DomainMin}}–{{.DomainMax}} each:
{{- range .Domains}}
- {{.}}
{{- end}}

Give:
1) domain scores ({{.DomainMin}}–{{.DomainMax}} each; never outside this range)
{{- if .ReportOverall}}
2) overall ({{.OverallMin}}–{{.OverallMax}}): average of the domain scores rescaled to this range, rounded to the nearest whole number
{{- end}}
{{.FeedbackStep}}) feedback for each question separately. Keep each section concise and actionable:
{{- range .Questions}}
- {{.FeedbackKey}}: feedback on the {{.Label}} answer ({{.WordTarget}})
{{- end}}
Every question must receive feedback. If an answer reads "{{.NoAnswer}}", say so in its feedback and reflect it in the scores.

Return STRICT JSON only (no markdown, no extra text) in this exact schema:
{{.ContractJSON}}`

var (
	systemTmpl = template.Must(template.New("system").Option("missingkey=error").Parse(systemText))
	userTmpl   = template.Must(template.New("user").Option("missingkey=error").Parse(userText))
)

type promptQuestion struct {
	Label       string
	Prompt      string
	Answer      string
	FeedbackKey string
	WordTarget  string
}

type promptData struct {
	Examiner      string
	Title         string
	Description   string
	Timings       stations.Timings
	Candidate     string
	Questions     []promptQuestion
	Domains       []string
	DomainMin     string
	DomainMax     string
	ReportOverall bool
	OverallMin    string
	OverallMax    string
	FeedbackStep  int
	NoAnswer      string
	ContractJSON  string
}

// Compile renders a Submission against its Station into a GradingRequest.
// Identical inputs always produce byte-identical output.
func Compile(sub Submission, st stations.Station, cfg ScoringConfig) (GradingRequest, error) {
	if err := cfg.Validate(); err != nil {
		return GradingRequest{}, err
	}
	if strings.TrimSpace(st.Examiner) == "" {
		return GradingRequest{}, fmt.Errorf("station %s has no examiner framing", st.ID)
	}
	if len(st.Questions) == 0 {
		return GradingRequest{}, fmt.Errorf("station %s has no questions", st.ID)
	}

	contract := Contract{
		Domains:       append([]string(nil), cfg.Domains...),
		ReportOverall: cfg.Overall == OverallModelReported,
	}

	data := promptData{
		Examiner:      st.Examiner,
		Title:         st.Title,
		Description:   strings.TrimSpace(st.Description),
		Timings:       st.Timings,
		Candidate:     sub.CandidateName,
		Domains:       cfg.Domains,
		DomainMin:     formatNumber(cfg.DomainMin),
		DomainMax:     formatNumber(cfg.DomainMax),
		ReportOverall: contract.ReportOverall,
		OverallMin:    formatNumber(cfg.OverallMin),
		OverallMax:    formatNumber(cfg.OverallMax),
		FeedbackStep:  2,
		NoAnswer:      NoAnswerMarker,
	}
	if data.Candidate == "" {
		data.Candidate = "Candidate"
	}
	if contract.ReportOverall {
		data.FeedbackStep = 3
	}

	for _, q := range st.Questions {
		contract.QuestionIDs = append(contract.QuestionIDs, q.ID)
		prompt := q.Prompt
		if custom := sub.Prompts[q.ID]; custom != "" {
			prompt = custom
		}
		answer := sub.Answer(q.ID)
		if answer == "" {
			answer = NoAnswerMarker
		}
		data.Questions = append(data.Questions, promptQuestion{
			Label:       questionLabel(q.ID),
			Prompt:      strings.TrimSpace(prompt),
			Answer:      answer,
			FeedbackKey: FeedbackKey(q.ID),
			WordTarget:  cfg.wordTarget(q.ID),
		})
	}
	data.ContractJSON = renderContract(contract)

	system, err := render(systemTmpl, data)
	if err != nil {
		return GradingRequest{}, err
	}
	user, err := render(userTmpl, data)
	if err != nil {
		return GradingRequest{}, err
	}

	return GradingRequest{
		StationID:  st.ID,
		System:     system,
		User:       user,
		SchemaName: schemaName,
		Schema:     contract.JSONSchema(),
		Contract:   contract,
	}, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return strings.TrimSpace(b.String()), nil
}

// renderContract writes the textual schema the model must follow, one key per line.
func renderContract(c Contract) string {
	var b strings.Builder
	b.WriteString("{\n")
	keys := c.RequiredKeys()
	for i, k := range keys {
		typ := "number"
		if strings.HasPrefix(k, feedbackPrefix) {
			typ = `"string"`
		}
		fmt.Fprintf(&b, "  %q: %s", k, typ)
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func questionLabel(id string) string {
	if id == "main" {
		return "MAIN"
	}
	return "FU" + strings.TrimPrefix(id, "f")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
