// Package history formats and bounds the conversation lines fed to the prompt.
package history

import "strings"

const DefaultWindow = 6

const (
	userPrefix      = "User: "
	assistantPrefix = "Assistant: "
)

func UserLine(message string) string {
	return userPrefix + message
}

func AssistantLine(reply string) string {
	return assistantPrefix + reply
}

// Exchange renders one turn as its two history lines.
func Exchange(message, reply string) []string {
	return []string{UserLine(message), AssistantLine(reply)}
}

// Trim keeps the most recent size lines. A size <= 0 uses DefaultWindow.
func Trim(lines []string, size int) []string {
	if size <= 0 {
		size = DefaultWindow
	}
	if len(lines) <= size {
		return lines
	}
	return lines[len(lines)-size:]
}

// Append adds an exchange and trims to size. The input slice is not modified.
func Append(lines []string, message, reply string, size int) []string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, lines...)
	out = append(out, Exchange(message, reply)...)
	return Trim(out, size)
}

// Render joins lines the way the prompt expects them.
func Render(lines []string) string {
	return strings.Join(lines, "\n")
}
