package channels

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage_ShortContentIsUntouched(t *testing.T) {
	chunks := splitMessage("короткое сообщение", 100)
	if len(chunks) != 1 || chunks[0] != "короткое сообщение" {
		t.Fatalf("chunks = %q", chunks)
	}
}

func TestSplitMessage_PrefersParagraphBoundaries(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	content := first + "\n\n" + second

	chunks := splitMessage(content, 100)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != first || chunks[1] != second {
		t.Fatalf("split did not respect the paragraph boundary: %q", chunks)
	}
}

func TestSplitMessage_RespectsLimit(t *testing.T) {
	content := strings.Repeat("слово и ещё одно слово ", 500)
	chunks := splitMessage(content, 200)

	for i, chunk := range chunks {
		if len(chunk) > 200 {
			t.Fatalf("chunk %d length %d exceeds limit", i, len(chunk))
		}
	}
	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "слово") {
		t.Fatalf("content lost during split")
	}
}

func TestSplitMessage_NeverCutsRunes(t *testing.T) {
	// Unbroken Cyrillic text forces the hard-cut path.
	content := strings.Repeat("ё", 500)
	chunks := splitMessage(content, 101)

	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := EscapeMarkdown("*bold* _under_ `code`")
	if strings.Contains(got, "*bold*") || strings.Contains(got, "`code`") {
		t.Fatalf("markup survived escaping: %q", got)
	}
}

func TestStripMarkup(t *testing.T) {
	got := StripMarkup("**Если есть риск** — звоните *112*")
	if strings.Contains(got, "*") {
		t.Fatalf("markup survived stripping: %q", got)
	}
	if !strings.Contains(got, "112") {
		t.Fatalf("content lost: %q", got)
	}
}

func TestBaseChannel_AllowList(t *testing.T) {
	ch := NewBaseChannel("test", nil, []string{"123", "@maria"})

	if !ch.IsAllowed("123") {
		t.Fatalf("plain id should be allowed")
	}
	if !ch.IsAllowed("456|maria") {
		t.Fatalf("compound id with allowed username should pass")
	}
	if ch.IsAllowed("789") {
		t.Fatalf("unknown id should be rejected")
	}

	open := NewBaseChannel("test", nil, nil)
	if !open.IsAllowed("anyone") {
		t.Fatalf("empty allowlist means open access")
	}
}
