package channels

import "strings"

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"~", "\\~",
	"|", "\\|",
	">", "\\>",
	"#", "\\#",
	"-", "\\-",
)

// EscapeMarkdown neutralizes transport markup in generated text so model
// output renders as plain prose. Fixed, pre-reviewed payloads bypass this
// (bus.OutboundMessage.PreFormatted).
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

var markupStripper = strings.NewReplacer(
	"**", "",
	"*", "",
	"__", "",
	"`", "",
	"~~", "",
)

// StripMarkup renders a markup payload as plain text for the fallback path
// when rich formatting is rejected by the transport.
func StripMarkup(text string) string {
	return markupStripper.Replace(text)
}
