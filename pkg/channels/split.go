package channels

import (
	"strings"
	"unicode/utf8"
)

// splitMessage breaks long outbound text into transport-sized chunks,
// preferring paragraph boundaries, then line breaks, then spaces. The
// transport is not assumed to enforce its own maximum, so exceeding the
// limit here would be an interface violation.
func splitMessage(content string, limit int) []string {
	var messages []string

	for len(content) > 0 {
		if len(content) <= limit {
			messages = append(messages, content)
			break
		}

		window := content[:limit]

		msgEnd := strings.LastIndex(window, "\n\n")
		if msgEnd <= 0 {
			msgEnd = findLastNewline(window, 200)
		}
		if msgEnd <= 0 {
			msgEnd = findLastSpace(window, 100)
		}
		if msgEnd <= 0 {
			msgEnd = limit
			// Never cut a multi-byte rune in half.
			for msgEnd > 0 && !utf8.RuneStart(content[msgEnd]) {
				msgEnd--
			}
		}

		messages = append(messages, strings.TrimRight(content[:msgEnd], " \n\t"))
		content = strings.TrimLeft(content[msgEnd:], " \n\t")
	}

	return messages
}

// findLastNewline finds the last newline within the last N bytes of s.
func findLastNewline(s string, searchWindow int) int {
	searchStart := len(s) - searchWindow
	if searchStart < 0 {
		searchStart = 0
	}
	for i := len(s) - 1; i >= searchStart; i-- {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}

// findLastSpace finds the last space within the last N bytes of s.
func findLastSpace(s string, searchWindow int) int {
	searchStart := len(s) - searchWindow
	if searchStart < 0 {
		searchStart = 0
	}
	for i := len(s) - 1; i >= searchStart; i-- {
		if s[i] == ' ' || s[i] == '\t' {
			return i
		}
	}
	return -1
}
