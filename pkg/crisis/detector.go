// Package crisis flags self-harm language with a fixed phrase list.
package crisis

import "strings"

// Phrases is the fixed list of self-harm related phrases. Matching is a
// case-insensitive substring test.
var Phrases = []string{
	"suicide",
	"kill myself",
	"end my life",
	"hopeless",
	"don't want to live",
	"want to die",
}

// Reply is returned verbatim instead of calling the model when a crisis is detected.
const Reply = "I'm really concerned about what you've shared. Please know that you matter and help is available. " +
	"Please contact a crisis helpline immediately: Call 988 (Suicide & Crisis Lifeline) or text HOME to 741741. " +
	"You don't have to face this alone. 💜"

// EmotionLabel is the emotion recorded for crisis turns.
const EmotionLabel = "critical"

type Result struct {
	IsCrisis bool     `json:"is_crisis"`
	Matched  []string `json:"matched,omitempty"`
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Detect reports every phrase found in text.
func Detect(text string) Result {
	normalized := apostrophes.Replace(strings.ToLower(text))

	var matched []string
	for _, phrase := range Phrases {
		if strings.Contains(normalized, phrase) {
			matched = append(matched, phrase)
		}
	}

	return Result{
		IsCrisis: len(matched) > 0,
		Matched:  matched,
	}
}

// IsCrisis is shorthand for Detect(text).IsCrisis.
func IsCrisis(text string) bool {
	return Detect(text).IsCrisis
}

type Resource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Resources lists the hotlines shown next to the chat.
func Resources() []Resource {
	return []Resource{
		{Name: "Emergency", Contact: "911"},
		{Name: "Suicide & Crisis Lifeline", Contact: "988"},
		{Name: "Crisis Text Line", Contact: "Text HOME to 741741"},
	}
}
