package marking

import (
	"reflect"
	"testing"
)

func TestNormalizeRejectsBlankMainAnswer(t *testing.T) {
	cases := map[string]map[string]any{
		"missing":        {},
		"empty":          {"answers": map[string]any{"main": ""}},
		"whitespace":     {"answers": map[string]any{"main": "  \n\t "}},
		"null":           {"answers": map[string]any{"main": nil}},
		"flat blank":     {"aMain": "   "},
		"followups only": {"a1": "x", "a2": "y", "a3": "z"},
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(body)
			me := requireKind(t, err, KindValidation)
			if !reflect.DeepEqual(me.Fields, []string{"answers.main"}) {
				t.Fatalf("unexpected fields %v", me.Fields)
			}
		})
	}
}

func TestNormalizeAliasPrecedence(t *testing.T) {
	sub, err := Normalize(map[string]any{
		"station_id":       "  s1 ",
		"name":             " Ada ",
		"answers":          map[string]any{"main": "  ", "f1": "nested f1"},
		"aMain":            "  from aMain ",
		"answer":           "from answer",
		"candidate_answer": "from candidate_answer",
		"a1":               "flat f1",
		"answer_f2":        "f2 text",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if sub.StationID != "s1" || sub.CandidateName != "Ada" {
		t.Fatalf("unexpected identity fields: %+v", sub)
	}
	want := map[string]string{"main": "from aMain", "f1": "nested f1", "f2": "f2 text"}
	if !reflect.DeepEqual(sub.Answers, want) {
		t.Fatalf("answers: got %v want %v", sub.Answers, want)
	}
}

func TestNormalizeLegacyCandidateAnswerKeys(t *testing.T) {
	for _, key := range []string{"answer", "candidate_answer", "candidateAnswer", "answer_main"} {
		sub, err := Normalize(map[string]any{key: "text"})
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if sub.Answer("main") != "text" {
			t.Fatalf("%s: main not resolved", key)
		}
	}
}

func TestNormalizeRejectsNonStringField(t *testing.T) {
	_, err := Normalize(map[string]any{"answers": map[string]any{"main": 12.0}})
	me := requireKind(t, err, KindValidation)
	if len(me.Fields) != 1 || me.Fields[0] != "answers.main" {
		t.Fatalf("unexpected fields %v", me.Fields)
	}
}

func TestNormalizeCustomPrompts(t *testing.T) {
	sub, err := Normalize(map[string]any{
		"aMain":         "answer",
		"customPrompts": map[string]any{"main": " Custom main? "},
		"q2":            "Custom f2?",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if sub.Prompts["main"] != "Custom main?" || sub.Prompts["f2"] != "Custom f2?" {
		t.Fatalf("unexpected prompts %v", sub.Prompts)
	}

	_, err = Normalize(map[string]any{"aMain": "answer", "q1": "   "})
	me := requireKind(t, err, KindValidation)
	if !reflect.DeepEqual(me.Fields, []string{"customPrompts.f1"}) {
		t.Fatalf("unexpected fields %v", me.Fields)
	}
}

func TestNormalizeCollectsEveryProblem(t *testing.T) {
	_, err := Normalize(map[string]any{"name": 3.0, "q3": ""})
	me := requireKind(t, err, KindValidation)
	want := []string{"candidateName", "answers.main", "customPrompts.f3"}
	if !reflect.DeepEqual(me.Fields, want) {
		t.Fatalf("fields: got %v want %v", me.Fields, want)
	}
}

func TestCheckCompleteNamesMissingFollowUps(t *testing.T) {
	st := bloodStation(t)
	sub := Submission{Answers: map[string]string{"main": "a", "f2": "b"}}
	err := checkComplete(sub, st)
	me := requireKind(t, err, KindValidation)
	if !reflect.DeepEqual(me.Fields, []string{"answers.f1", "answers.f3"}) {
		t.Fatalf("unexpected fields %v", me.Fields)
	}
}
