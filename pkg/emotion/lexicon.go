package emotion

import (
	"context"
	"strings"
	"unicode"
)

var defaultLexicon = map[Label][]string{
	Joy:      {"happy", "glad", "great", "excited", "grateful", "thankful", "joy", "wonderful", "love", "proud", "relieved"},
	Sadness:  {"sad", "down", "depressed", "lonely", "alone", "cry", "crying", "miserable", "empty", "tired", "grief", "lost", "hurt"},
	Anger:    {"angry", "mad", "furious", "annoyed", "frustrated", "hate", "irritated", "rage", "unfair"},
	Fear:     {"scared", "afraid", "anxious", "anxiety", "worried", "worry", "nervous", "panic", "terrified", "stressed", "overwhelmed"},
	Surprise: {"surprised", "shocked", "unexpected", "suddenly", "wow", "unbelievable"},
	Disgust:  {"disgusted", "disgusting", "gross", "sick of", "revolting", "ashamed"},
}

// LexiconClassifier scores text by counting keyword hits per label.
// It needs no network and is used when the hosted model is unavailable.
type LexiconClassifier struct {
	lexicon map[Label][]string
}

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{lexicon: defaultLexicon}
}

func (c *LexiconClassifier) Classify(_ context.Context, text string) (Label, error) {
	normalized := " " + strings.Join(strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}), " ") + " "

	best, bestScore := Neutral, 0
	// Iterate in Labels order so ties resolve deterministically.
	for _, label := range Labels {
		score := 0
		for _, word := range c.lexicon[label] {
			score += strings.Count(normalized, " "+word+" ")
		}
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	return best, nil
}
