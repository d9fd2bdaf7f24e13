package marking

import (
	"reflect"
	"strings"
	"testing"
)

func defaultContract() Contract {
	return Contract{
		Domains:     []string{"empathy", "communication", "ethics", "insight"},
		QuestionIDs: []string{"main", "f1", "f2", "f3"},
	}
}

func TestValidateWellFormed(t *testing.T) {
	res, err := Validate(wellFormed, DefaultScoringConfig(), defaultContract())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := map[string]float64{"empathy": 8, "communication": 7, "ethics": 9, "insight": 6}
	if !reflect.DeepEqual(res.Scores, want) {
		t.Fatalf("scores: got %v want %v", res.Scores, want)
	}
	if res.Overall != 8 || !res.OverallDerived {
		t.Fatalf("overall: got %v derived=%v", res.Overall, res.OverallDerived)
	}
	if res.Feedback["f1"] != "Mention ADRT." {
		t.Fatalf("feedback: %v", res.Feedback)
	}
}

func TestValidateRepairsSurroundingProse(t *testing.T) {
	wrapped := "Here is the marking:\n```json\n" + wellFormed + "\n```\nThanks."
	a, err := Validate(wrapped, DefaultScoringConfig(), defaultContract())
	if err != nil {
		t.Fatalf("Validate wrapped: %v", err)
	}
	b, err := Validate(wellFormed, DefaultScoringConfig(), defaultContract())
	if err != nil {
		t.Fatalf("Validate bare: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repair changed the result: %+v vs %+v", a, b)
	}
}

func TestValidateUnparseable(t *testing.T) {
	for _, raw := range []string{"no json here", "} backwards {", "null", "{not: json}"} {
		_, err := Validate(raw, DefaultScoringConfig(), defaultContract())
		me := requireKind(t, err, KindSchema)
		if me.Reason != ReasonUnparseable {
			t.Fatalf("%q: reason %q", raw, me.Reason)
		}
		if me.Raw != raw {
			t.Fatalf("%q: raw not preserved", raw)
		}
	}
}

func TestValidateRejectsOutOfRangeWithoutClamping(t *testing.T) {
	raw := strings.Replace(wellFormed, `"empathy":8`, `"empathy":11`, 1)
	_, err := Validate(raw, DefaultScoringConfig(), defaultContract())
	me := requireKind(t, err, KindSchema)
	if me.Reason != ReasonContractViolation {
		t.Fatalf("reason %q", me.Reason)
	}
	if !reflect.DeepEqual(me.Fields, []string{"empathy"}) {
		t.Fatalf("fields %v", me.Fields)
	}
	if !strings.Contains(me.Message, "empathy is 11, outside [0,10]") {
		t.Fatalf("message %q", me.Message)
	}
}

func TestValidateNamesEveryViolation(t *testing.T) {
	raw := `{"empathy":"8","communication":7,"ethics":9,"feedback_main":"ok","feedback_f1":"  ","feedback_f2":3,"feedback_f3":"ok"}`
	_, err := Validate(raw, DefaultScoringConfig(), defaultContract())
	me := requireKind(t, err, KindSchema)
	want := []string{"empathy", "insight", "feedback_f1", "feedback_f2"}
	if !reflect.DeepEqual(me.Fields, want) {
		t.Fatalf("fields: got %v want %v", me.Fields, want)
	}
}

func TestValidateSumScaledIgnoresReportedOverall(t *testing.T) {
	cfg := ScoringConfig{
		Domains:    []string{"empathy", "communication", "ethics", "insight"},
		DomainMin:  0,
		DomainMax:  2,
		OverallMin: 0,
		OverallMax: 10,
		Overall:    OverallSumScaled,
	}
	raw := `{"empathy":2,"communication":2,"ethics":1,"insight":1,"overall":3,
		"feedback_main":"a","feedback_f1":"b","feedback_f2":"c","feedback_f3":"d"}`
	res, err := Validate(raw, cfg, defaultContract())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Overall != 8 || !res.OverallDerived {
		t.Fatalf("overall: got %v derived=%v", res.Overall, res.OverallDerived)
	}
}

func TestValidateModelReportedOverall(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.Overall = OverallModelReported
	contract := defaultContract()
	contract.ReportOverall = true

	raw := strings.Replace(wellFormed, "{", `{"overall":4,`, 1)
	res, err := Validate(raw, cfg, contract)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Overall != 4 || res.OverallDerived {
		t.Fatalf("overall: got %v derived=%v", res.Overall, res.OverallDerived)
	}

	_, err = Validate(wellFormed, cfg, contract)
	me := requireKind(t, err, KindSchema)
	if !reflect.DeepEqual(me.Fields, []string{"overall"}) {
		t.Fatalf("fields %v", me.Fields)
	}
}
