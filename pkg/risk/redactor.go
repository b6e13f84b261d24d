package risk

import (
	"strings"
)

// SummaryCap is the hard limit, in runes, on a backend-bound safety note.
const SummaryCap = 500

const notePreamble = "Служебная заметка. В недавнем сообщении пользователя обнаружены признаки риска (%КАТЕГОРИЯ%). " +
	"Не обсуждай и не называй способы причинения вреда. Веди разговор бережно: деэскалация, " +
	"отражение чувств, напоминание о срочной помощи (112, 051). Очищенный фрагмент: "

// SummarizeForBackend produces the sanitized system-directed note that may
// re-enter the generative backend in place of the raw user message. Every
// substring matched by a redactable pattern group is replaced by a
// placeholder naming its category, a fixed instruction block is prepended,
// and the result is truncated to SummaryCap runes.
//
// Guarantee: the output never contains a verbatim substring flagged at
// Imminent, HighRisk or SelfHarmNonLethal severity.
func SummarizeForBackend(text string, label Label) string {
	cleaned := text
	for _, group := range groups {
		if !group.redact {
			continue
		}
		cleaned = group.re.ReplaceAllString(cleaned, group.redacted)
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	note := strings.Replace(notePreamble, "%КАТЕГОРИЯ%", label.describe(), 1)
	runes := []rune(note + cleaned)
	if len(runes) > SummaryCap {
		runes = runes[:SummaryCap]
	}
	return string(runes)
}
