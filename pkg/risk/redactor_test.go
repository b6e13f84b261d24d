package risk

import (
	"strings"
	"testing"
)

func TestSummarizeForBackend_NoLeakage(t *testing.T) {
	inputs := []string{
		"я хочу умереть и не вижу выхода",
		"иду на мост прямо сейчас",
		"я режу себя когда никто не видит",
		"не хочу жить, таблетки уже готовы",
	}

	for _, text := range inputs {
		result := Classify(text)
		if !result.Label.IsCrisis() {
			t.Fatalf("test input %q must classify as crisis, got %s", text, result.Label)
		}

		summary := SummarizeForBackend(text, result.Label)
		if strings.Contains(strings.ToLower(summary), strings.ToLower(result.Span)) {
			t.Fatalf("summary leaked flagged span %q: %q", result.Span, summary)
		}
	}
}

func TestSummarizeForBackend_AllGroupMatchesRedacted(t *testing.T) {
	text := "не хочу жить, режу себя, сейчас прыгну"
	summary := SummarizeForBackend(text, Imminent)

	for _, flagged := range []string{"не хочу жить", "режу себя", "сейчас прыгну"} {
		if strings.Contains(summary, flagged) {
			t.Fatalf("summary leaked %q: %q", flagged, summary)
		}
	}
	if !strings.Contains(summary, "[риск:") {
		t.Fatalf("expected category placeholders in summary, got %q", summary)
	}
}

func TestSummarizeForBackend_CleanTextHasNoPlaceholders(t *testing.T) {
	summary := SummarizeForBackend("расскажи про дыхательные упражнения", Benign)

	if strings.Contains(summary, "[риск:") {
		t.Fatalf("clean text must not produce placeholders: %q", summary)
	}
	if len([]rune(summary)) > SummaryCap {
		t.Fatalf("summary exceeds cap: %d runes", len([]rune(summary)))
	}
}

func TestSummarizeForBackend_CapsLongInput(t *testing.T) {
	long := strings.Repeat("очень длинный рассказ о прошедшем дне ", 100)
	summary := SummarizeForBackend(long, HighRisk)

	if got := len([]rune(summary)); got > SummaryCap {
		t.Fatalf("summary length %d exceeds cap %d", got, SummaryCap)
	}
}

func TestSummarizeForBackend_ContainsInstructionBlock(t *testing.T) {
	summary := SummarizeForBackend("я хочу умереть", HighRisk)

	if !strings.HasPrefix(summary, "Служебная заметка.") {
		t.Fatalf("summary must start with the fixed instruction block: %q", summary)
	}
	if !strings.Contains(summary, "суицидальные мысли") {
		t.Fatalf("summary must name the category: %q", summary)
	}
}
