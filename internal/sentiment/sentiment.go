// Package sentiment maps text to a polarity label and confidence score.
// Classification itself is delegated to an external model; this package owns
// the label to emotion mapping.
package sentiment

import (
	"context"
	"fmt"
	"strings"

	"echoguard/internal/config"
	"echoguard/internal/llm"
	"echoguard/internal/records"
)

// Result is the raw classifier output. Score is a confidence in [0,1].
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// EmotionFromLabel maps a classifier label to an emotion.
func EmotionFromLabel(label string) records.Emotion {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "positive"):
		return records.EmotionHappy
	case strings.Contains(l, "negative"):
		return records.EmotionSad
	default:
		return records.EmotionNeutral
	}
}

// New builds the classifier selected by cfg.ClassifierProvider.
func New(cfg *config.Config) (Classifier, error) {
	switch cfg.ClassifierProvider {
	case config.ProviderLexicon:
		return NewLexiconClassifier(), nil
	case config.ProviderOpenAI, config.ProviderYandex:
		client, err := llm.NewFactory(cfg).CreateClient(string(cfg.ClassifierProvider))
		if err != nil {
			return nil, err
		}
		return NewLLMClassifier(client), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.ClassifierProvider)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
