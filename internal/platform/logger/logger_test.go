package logger

import "testing"

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	l := &Logger{redact: true, salt: "s"}
	out := l.sanitizeKVs([]interface{}{"api_key", "sk-123", "candidate_name", "Ada", "station_id", "x", "dangling"})
	if len(out) != 7 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected api_key redacted, got %v", out[1])
	}
	h, _ := out[3].(string)
	if len(h) != len("hash:")+12 || h[:5] != "hash:" {
		t.Fatalf("expected hashed candidate name, got %v", out[3])
	}
	if out[5] != "x" {
		t.Fatalf("expected station_id untouched, got %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("expected trailing key kept, got %v", out[6])
	}
}

func TestSanitizeKVsPassthroughWhenDisabled(t *testing.T) {
	l := &Logger{}
	in := []interface{}{"api_key", "sk-123"}
	out := l.sanitizeKVs(in)
	if out[1] != "sk-123" {
		t.Fatalf("expected passthrough, got %v", out[1])
	}
}
