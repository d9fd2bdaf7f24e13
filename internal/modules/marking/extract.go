package marking

import (
	"encoding/json"
	"strings"
)

// ExtractStrategy pulls the model's text out of one known envelope shape.
type ExtractStrategy struct {
	Name    string
	Extract func(envelope []byte) (string, bool)
}

// DefaultStrategies are tried in order; the first one yielding text wins.
var DefaultStrategies = []ExtractStrategy{
	{Name: "responses.output", Extract: fromResponsesOutput},
	{Name: "responses.output_text", Extract: fromOutputText},
	{Name: "chat.choices", Extract: fromChatChoices},
}

// Extract returns the first non-empty text found by the strategies and the
// name of the strategy that found it. ok is false when nothing matched.
func Extract(envelope []byte, strategies []ExtractStrategy) (text string, strategy string, ok bool) {
	for _, s := range strategies {
		if s.Extract == nil {
			continue
		}
		if t, found := s.Extract(envelope); found {
			return t, s.Name, true
		}
	}
	return "", "", false
}

func isTextPart(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "output_text", "text":
		return true
	}
	return false
}

// fromResponsesOutput reads output[].content[] parts of a Responses API envelope.
// Items or parts of an unexpected shape are skipped rather than failing the strategy.
func fromResponsesOutput(envelope []byte) (string, bool) {
	var env struct {
		Output []json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(envelope, &env); err != nil {
		return "", false
	}
	for _, rawItem := range env.Output {
		var item struct {
			Content []json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(rawItem, &item); err != nil {
			continue
		}
		for _, rawPart := range item.Content {
			var part struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}
			if err := json.Unmarshal(rawPart, &part); err != nil {
				continue
			}
			if isTextPart(part.Type) && strings.TrimSpace(part.Text) != "" {
				return part.Text, true
			}
		}
	}
	return "", false
}

// fromOutputText reads the SDK-style top-level output_text convenience field.
func fromOutputText(envelope []byte) (string, bool) {
	var env struct {
		OutputText *string `json:"output_text"`
	}
	if err := json.Unmarshal(envelope, &env); err != nil || env.OutputText == nil {
		return "", false
	}
	if strings.TrimSpace(*env.OutputText) == "" {
		return "", false
	}
	return *env.OutputText, true
}

// fromChatChoices reads choices[].message.content of a chat-completions envelope.
func fromChatChoices(envelope []byte) (string, bool) {
	var env struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(envelope, &env); err != nil {
		return "", false
	}
	for _, ch := range env.Choices {
		if c := ch.Message.Content; c != nil && strings.TrimSpace(*c) != "" {
			return *c, true
		}
	}
	return "", false
}
