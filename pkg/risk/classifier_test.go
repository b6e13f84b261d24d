package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testcases := []struct {
		name string
		text string
		want Label
	}{
		{
			name: "empty-is-benign",
			text: "",
			want: Benign,
		},
		{
			name: "whitespace-is-benign",
			text: "   \n\t ",
			want: Benign,
		},
		{
			name: "punctuation-and-emoji-is-benign",
			text: "!!! ... 🙂🙂🙂 ???",
			want: Benign,
		},
		{
			name: "ordinary-message-is-benign",
			text: "спасибо, мне помогло",
			want: Benign,
		},
		{
			name: "wish-to-die-is-high-risk",
			text: "я хочу умереть",
			want: HighRisk,
		},
		{
			name: "high-risk-case-insensitive",
			text: "Я ХОЧУ УМЕРЕТЬ",
			want: HighRisk,
		},
		{
			name: "suicide-keyword-is-high-risk",
			text: "у меня суицидальные мысли уже неделю",
			want: HighRisk,
		},
		{
			name: "concrete-plan-is-imminent",
			text: "иду на мост прямо сейчас",
			want: Imminent,
		},
		{
			name: "pills-ready-is-imminent",
			text: "таблетки уже готовы, прощайте",
			want: Imminent,
		},
		{
			name: "cutting-is-nssi",
			text: "я снова режу себя по вечерам",
			want: SelfHarmNonLethal,
		},
		{
			name: "friend-at-risk-is-third-party",
			text: "мой друг хочет покончить с собой, что делать",
			want: ThirdPartyConcern,
		},
		{
			name: "hostility-is-toxic",
			text: "все уроды, ненавижу всех",
			want: Toxic,
		},
		{
			name: "long-input-does-not-break-classification",
			text: strings.Repeat("обычный текст без рисков ", 5000) + "не хочу жить",
			want: HighRisk,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.text)
			assert.Equal(t, tc.want, got.Label)
			if tc.want != Benign {
				assert.NotEmpty(t, got.Span, "non-benign result must carry an evidence span")
				assert.Contains(t, strings.ToLower(tc.text), strings.ToLower(got.Span))
			} else {
				assert.Empty(t, got.Span)
			}
		})
	}
}

// Severity precedence: the highest-severity matching group wins no matter
// how many lower groups also match.
func TestClassify_SeverityPrecedence(t *testing.T) {
	text := "ненавижу всех, не хочу жить, сейчас прыгну с крыши"

	got := Classify(text)
	if got.Label != Imminent {
		t.Fatalf("expected Imminent to outrank HighRisk and Toxic, got %s", got.Label)
	}

	got = Classify("все уроды, и вообще я не хочу жить")
	if got.Label != HighRisk {
		t.Fatalf("expected HighRisk to outrank Toxic, got %s", got.Label)
	}
}

func TestClassify_IsPure(t *testing.T) {
	text := "я хочу умереть"
	first := Classify(text)
	for i := 0; i < 100; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("classification is not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestLabel_IsCrisis(t *testing.T) {
	crisis := []Label{Imminent, HighRisk, SelfHarmNonLethal, ThirdPartyConcern}
	for _, label := range crisis {
		if !label.IsCrisis() {
			t.Fatalf("%s should be a crisis label", label)
		}
	}
	for _, label := range []Label{Toxic, Benign} {
		if label.IsCrisis() {
			t.Fatalf("%s should not be a crisis label", label)
		}
	}
}
