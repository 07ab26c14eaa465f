package emotion

import "strings"

type Label string

const (
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Fear     Label = "fear"
	Surprise Label = "surprise"
	Disgust  Label = "disgust"
	Neutral  Label = "neutral"

	// Critical is only assigned by crisis detection, never by a classifier.
	Critical Label = "critical"
)

// Labels is the classifier output set.
var Labels = []Label{Joy, Sadness, Anger, Fear, Surprise, Disgust, Neutral}

var aliases = map[string]Label{
	"happy":     Joy,
	"happiness": Joy,
	"sad":       Sadness,
	"angry":     Anger,
	"scared":    Fear,
	"afraid":    Fear,
	"surprised": Surprise,
	"disgusted": Disgust,
}

// Normalize maps a raw provider label onto the label set. Unknown labels are neutral.
func Normalize(raw string) Label {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, l := range Labels {
		if s == string(l) {
			return l
		}
	}
	if s == string(Critical) {
		return Critical
	}
	if l, ok := aliases[s]; ok {
		return l
	}
	return Neutral
}

// ToneInstruction returns a short behaviour guideline for the reply.
func ToneInstruction(l Label) string {
	switch l {
	case Sadness:
		return "Be gentle and validating; acknowledge how heavy this feels."
	case Anger:
		return "Stay calm and non-judgemental; acknowledge the frustration before suggesting anything."
	case Fear:
		return "Be reassuring and grounding; offer one simple calming step."
	case Joy:
		return "Share in the positive feeling warmly and encourage what is working."
	case Surprise:
		return "Help the user make sense of what happened without rushing them."
	case Disgust:
		return "Acknowledge the discomfort respectfully and without judgement."
	default:
		return ""
	}
}
