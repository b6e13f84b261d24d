package risk

import (
	"errors"
	"strings"
	"testing"
)

func TestNewResponder_CoversEveryCrisisLabel(t *testing.T) {
	responder, err := NewResponder()
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}

	for _, label := range []Label{Imminent, HighRisk, SelfHarmNonLethal, ThirdPartyConcern} {
		payload, err := responder.Select(label)
		if err != nil {
			t.Fatalf("Select(%s): %v", label, err)
		}
		if !strings.Contains(payload, "112") {
			t.Fatalf("payload for %s must contain the emergency number block", label)
		}
		if !strings.Contains(payload, ResourcesCard) {
			t.Fatalf("payload for %s must embed the resources card", label)
		}
	}
}

func TestResponder_Deterministic(t *testing.T) {
	responder, err := NewResponder()
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}

	first, _ := responder.Select(HighRisk)
	for i := 0; i < 10; i++ {
		again, _ := responder.Select(HighRisk)
		if again != first {
			t.Fatalf("crisis payload must be byte-identical across calls")
		}
	}
}

func TestResponder_RejectsNonCrisisLabels(t *testing.T) {
	responder, err := NewResponder()
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}

	for _, label := range []Label{Toxic, Benign} {
		if _, err := responder.Select(label); !errors.Is(err, ErrInvalidLabel) {
			t.Fatalf("Select(%s) should fail with ErrInvalidLabel, got %v", label, err)
		}
	}
}
