package marking

import (
	"context"
	"testing"

	"github.com/yungbote/station-marker/internal/platform/logger"
	"github.com/yungbote/station-marker/internal/stations"
)

type stubGenerator struct {
	calls    int
	envelope []byte
	err      error
	last     GradingRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req GradingRequest) ([]byte, error) {
	s.calls++
	s.last = req
	return s.envelope, s.err
}

func loadCatalog(t *testing.T) *stations.Catalog {
	t.Helper()
	cat, err := stations.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return cat
}

func bloodStation(t *testing.T) stations.Station {
	t.Helper()
	st, err := loadCatalog(t).Lookup("blood_transfusion_refusal")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	return st
}

func newTestPipeline(t *testing.T, gen Generator, mutate func(*Options)) *Pipeline {
	t.Helper()
	opts := Options{
		Catalog:    loadCatalog(t),
		Generator:  gen,
		Scoring:    DefaultScoringConfig(),
		Credential: "sk-test",
		Log:        logger.NewNop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func fullBody() map[string]any {
	return map[string]any{
		"stationId":     "blood_transfusion_refusal",
		"candidateName": "Ada",
		"answers": map[string]any{
			"main": "I would assess capacity...",
			"f1":   "Best interests...",
			"f2":   "Involve seniors...",
			"f3":   "Cell salvage...",
		},
	}
}

const wellFormed = `{"empathy":8,"communication":7,"ethics":9,"insight":6,"feedback_main":"Good capacity focus.","feedback_f1":"Mention ADRT.","feedback_f2":"Good MDT.","feedback_f3":"Name alternatives."}`

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	me, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if me.Kind != want {
		t.Fatalf("expected kind %s, got %s (%v)", want, me.Kind, err)
	}
	return me
}
