// Package knowledge holds the curated mental-health passages used for retrieval.
package knowledge

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrEmptyCorpus = errors.New("knowledge corpus is empty")

var builtin = []string{
	"Anxiety can cause rapid heartbeat and excessive worry.",
	"Depression includes persistent sadness and low energy.",
	"Breathing exercises help reduce panic attacks.",
	"Cognitive Behavioral Therapy is effective for anxiety disorders.",
	"Talking to a trusted person can improve emotional well-being.",
	"Regular exercise can significantly improve mental health.",
	"Sleep hygiene is crucial for emotional regulation.",
	"Mindfulness meditation can reduce stress and anxiety.",
	"Social connections are vital for mental wellness.",
	"Professional help is important for persistent mental health issues.",
}

// Builtin returns a copy of the built-in corpus in its fixed order.
func Builtin() []string {
	out := make([]string, len(builtin))
	copy(out, builtin)
	return out
}

// LoadFile reads one passage per non-blank line.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge file: %w", err)
	}
	defer f.Close()

	var passages []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		passages = append(passages, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	if len(passages) == 0 {
		return nil, ErrEmptyCorpus
	}
	return passages, nil
}

// Load returns the file corpus when path is set, otherwise the built-in one.
func Load(path string) ([]string, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}
