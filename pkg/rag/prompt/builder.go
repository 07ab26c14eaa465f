package prompt

import (
	"strings"

	"mindcare-be/pkg/llm"
)

const SystemMessage = "You are a compassionate mental health support assistant. Be empathetic, supportive, and encouraging. Never provide medical diagnoses."

// Input is everything the reply prompt is assembled from.
type Input struct {
	Emotion string
	Tone    string
	Context string
	History []string
	Message string
}

// Builder assembles the support prompt for one user turn
type Builder struct {
	in Input
}

func NewBuilder(in Input) *Builder {
	return &Builder{in: in}
}

// Build renders the user prompt: emotion, knowledge, history, message, instructions.
func (b *Builder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("You are a compassionate mental health assistant.\n\n")

	prompt.WriteString("Detected emotion: ")
	prompt.WriteString(b.in.Emotion)
	prompt.WriteString("\n\n")

	prompt.WriteString("Relevant knowledge:\n")
	prompt.WriteString(b.in.Context)
	prompt.WriteString("\n\n")

	prompt.WriteString("Conversation history:\n")
	prompt.WriteString(strings.Join(b.in.History, "\n"))
	prompt.WriteString("\n\n")

	prompt.WriteString("User message:\n")
	prompt.WriteString(b.in.Message)
	prompt.WriteString("\n\n")

	prompt.WriteString("Respond empathetically. Do not give medical diagnosis. Encourage professional help if needed.")

	if b.in.Tone != "" {
		prompt.WriteString("\nTone: ")
		prompt.WriteString(b.in.Tone)
	}

	return prompt.String()
}

// Messages wraps Build with the fixed system message.
func (b *Builder) Messages() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemMessage},
		{Role: llm.RoleUser, Content: b.Build()},
	}
}
