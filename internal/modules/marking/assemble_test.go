package marking

import (
	"errors"
	"net/http"
	"testing"
)

func TestAssembleCopiesInputs(t *testing.T) {
	st := bloodStation(t)
	res := AssessmentResult{
		Scores:   map[string]float64{"empathy": 5},
		Overall:  5,
		Feedback: map[string]string{"main": "ok"},
	}
	sub := Submission{CandidateName: "Ada", Prompts: map[string]string{"f3": "Custom?"}}

	out := Assemble(res, st, sub, DefaultScoringConfig())
	out.Scores["empathy"] = 0
	out.ReferenceAnswers["main"].Bullets[0] = "changed"

	if res.Scores["empathy"] != 5 {
		t.Fatalf("result scores were aliased")
	}
	if st.Questions[0].Reference.Bullets[0] == "changed" {
		t.Fatalf("station references were aliased")
	}
	if got := out.Station.Questions[3].Prompt; got != "Custom?" {
		t.Fatalf("custom prompt not reflected: %q", got)
	}
	if ref := out.ReferenceAnswers["main"]; ref.BulletTarget != "5-7 bullets" || ref.FullTarget != "150-220 words" {
		t.Fatalf("reference targets not carried: %+v", ref)
	}
	if out.Scoring.OverallMode != OverallSumScaled || out.Scoring.DomainRange.Max != 10 {
		t.Fatalf("scoring summary %+v", out.Scoring)
	}
}

func TestToAPIErrorStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", validationError("bad", "answers.main"), http.StatusBadRequest},
		{"configuration", configurationError("no key"), http.StatusInternalServerError},
		{"transport", transportError(errors.New("dial")), http.StatusBadGateway},
		{"service mirrors upstream", serviceError(429, []byte(`{}`)), 429},
		{"service out of range", serviceError(302, nil), http.StatusBadGateway},
		{"no output", noOutputError([]byte(`{}`)), http.StatusInternalServerError},
		{"unparseable", unparseableError("x", errors.New("eof")), http.StatusInternalServerError},
		{"contract", contractViolation("{}", []string{"empathy is missing"}, []string{"empathy"}), http.StatusInternalServerError},
		{"foreign", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := ToAPIError(tc.err).Status; got != tc.status {
			t.Fatalf("%s: status %d want %d", tc.name, got, tc.status)
		}
	}
}

func TestToAPIErrorSchemaCarriesRaw(t *testing.T) {
	ae := ToAPIError(unparseableError("not json", errors.New("eof")))
	if ae.Err.Error() != "Invalid model JSON" || ae.Raw != "not json" {
		t.Fatalf("unexpected api error %+v", ae)
	}
	if ae.Code != string(KindSchema) {
		t.Fatalf("code %q", ae.Code)
	}
}
