// Package emotion maps free text onto a small fixed set of emotion labels.
package emotion

import (
	"context"
	"errors"
	"fmt"
)

// Classifier turns text into a Label.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// FallbackClassifier asks each classifier in turn and keeps the first answer.
type FallbackClassifier struct {
	classifiers []Classifier
	onError     func(err error)
}

func NewFallbackClassifier(onError func(err error), classifiers ...Classifier) *FallbackClassifier {
	return &FallbackClassifier{
		classifiers: classifiers,
		onError:     onError,
	}
}

// Classify never fails: when every classifier errors the text is neutral.
func (f *FallbackClassifier) Classify(ctx context.Context, text string) (Label, error) {
	var errs []error
	for i, c := range f.classifiers {
		label, err := c.Classify(ctx, text)
		if err == nil {
			return label, nil
		}
		errs = append(errs, fmt.Errorf("classifier %d: %w", i, err))
	}
	if len(errs) > 0 && f.onError != nil {
		f.onError(errors.Join(errs...))
	}
	return Neutral, nil
}
