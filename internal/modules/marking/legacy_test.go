package marking

import (
	"context"
	"reflect"
	"testing"
)

func TestLegacyViewFlattensPayload(t *testing.T) {
	gen := &stubGenerator{envelope: responsesEnvelope(wellFormed)}
	p := newTestPipeline(t, gen, nil)
	out, err := p.Mark(context.Background(), map[string]any{
		"name": "Ada", "aMain": "m", "a1": "x", "a2": "y", "a3": "z",
	})
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}

	view := LegacyView(out)
	for key, want := range map[string]any{
		"empathy":       8.0,
		"communication": 7.0,
		"ethics":        9.0,
		"insight":       6.0,
		"overall":       8.0,
		"feedback_main": "Good capacity focus.",
		"feedback_fu1":  "Mention ADRT.",
		"feedback_fu3":  "Name alternatives.",
	} {
		if got := view[key]; got != want {
			t.Fatalf("%s: got %v want %v", key, got, want)
		}
	}

	st := bloodStation(t)
	for i, key := range []string{"main", "fu1", "fu2", "fu3"} {
		ref := st.Questions[i].Reference
		if got := view["model_"+key+"_bullets"]; !reflect.DeepEqual(got, ref.Bullets) {
			t.Fatalf("model_%s_bullets: got %v", key, got)
		}
		if got := view["model_"+key+"_full"]; got != ref.Full {
			t.Fatalf("model_%s_full altered", key)
		}
	}

	station, ok := view["station"].(map[string]any)
	if !ok {
		t.Fatalf("station missing: %T", view["station"])
	}
	if station["title"] != st.Title || station["qMain"] != st.Questions[0].Prompt || station["q3"] != st.Questions[3].Prompt {
		t.Fatalf("unexpected station %v", station)
	}
	if timings := station["timings"].(map[string]string); timings["followups"] != "2 minutes" {
		t.Fatalf("unexpected timings %v", timings)
	}
	for _, nested := range []string{"scores", "feedback", "reference_answers", "feedback_f1"} {
		if _, present := view[nested]; present {
			t.Fatalf("unexpected key %q in flat view", nested)
		}
	}
}
