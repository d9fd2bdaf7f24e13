package marking

import "testing"

func TestExtractEnvelopeShapes(t *testing.T) {
	cases := []struct {
		name     string
		envelope string
		text     string
		strategy string
	}{
		{
			name:     "responses output parts",
			envelope: `{"output":[{"type":"reasoning","summary":[]},{"type":"message","content":[{"type":"output_text","text":"{\"a\":1}"}]}]}`,
			text:     `{"a":1}`,
			strategy: "responses.output",
		},
		{
			name:     "output_text convenience field",
			envelope: `{"output_text":"{\"a\":2}"}`,
			text:     `{"a":2}`,
			strategy: "responses.output_text",
		},
		{
			name:     "chat completion",
			envelope: `{"choices":[{"message":{"role":"assistant","content":"{\"a\":3}"}}]}`,
			text:     `{"a":3}`,
			strategy: "chat.choices",
		},
		{
			name:     "output parts win over output_text",
			envelope: `{"output_text":"second","output":[{"content":[{"type":"output_text","text":"first"}]}]}`,
			text:     "first",
			strategy: "responses.output",
		},
		{
			name:     "blank parts fall through",
			envelope: `{"output":[{"content":[{"type":"output_text","text":"  "}]}],"output_text":"fallback"}`,
			text:     "fallback",
			strategy: "responses.output_text",
		},
		{
			name:     "malformed item skipped",
			envelope: `{"output":["junk",{"content":[7,{"type":"text","text":"ok"}]}]}`,
			text:     "ok",
			strategy: "responses.output",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			text, strategy, ok := Extract([]byte(tc.envelope), DefaultStrategies)
			if !ok {
				t.Fatalf("expected text")
			}
			if text != tc.text || strategy != tc.strategy {
				t.Fatalf("got (%q, %q) want (%q, %q)", text, strategy, tc.text, tc.strategy)
			}
		})
	}
}

func TestExtractNoText(t *testing.T) {
	for _, envelope := range []string{
		`{}`,
		`not json`,
		`{"output":[{"content":[{"type":"refusal","refusal":"no"}]}]}`,
		`{"output_text":""}`,
		`{"choices":[{"message":{"content":null}}]}`,
	} {
		if text, _, ok := Extract([]byte(envelope), DefaultStrategies); ok {
			t.Fatalf("%s: unexpected text %q", envelope, text)
		}
	}
}

func TestExtractCustomStrategies(t *testing.T) {
	custom := []ExtractStrategy{
		{Name: "nil"},
		{Name: "fixed", Extract: func([]byte) (string, bool) { return "x", true }},
	}
	text, strategy, ok := Extract([]byte(`{}`), custom)
	if !ok || text != "x" || strategy != "fixed" {
		t.Fatalf("got (%q, %q, %v)", text, strategy, ok)
	}
}
