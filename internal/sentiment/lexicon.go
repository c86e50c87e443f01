package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var (
	positiveWords = []string{
		"happy", "glad", "great", "good", "love", "joy", "excited", "wonderful", "amazing",
		"grateful", "calm", "hopeful", "proud", "fantastic", "awesome", "nice", "relaxed",
		"better", "smile", "thankful", "peaceful", "cheerful", "delighted", "fun",
	}
	negativeWords = []string{
		"sad", "bad", "angry", "hate", "awful", "terrible", "depressed", "lonely", "tired",
		"anxious", "worried", "afraid", "scared", "upset", "miserable", "hopeless",
		"worthless", "die", "hurt", "pain", "cry", "stressed", "empty", "kill", "suicide",
	}
	negators = map[string]bool{"not": true, "no": true, "never": true, "don't": true, "isn't": true, "wasn't": true}
)

// LexiconClassifier is an offline word-list classifier. It needs no network
// access, which makes it the classifier of choice for tests and the CLI.
type LexiconClassifier struct {
	positive map[string]bool
	negative map[string]bool
}

func NewLexiconClassifier() *LexiconClassifier {
	c := &LexiconClassifier{positive: map[string]bool{}, negative: map[string]bool{}}
	for _, w := range positiveWords {
		c.positive[w] = true
	}
	for _, w := range negativeWords {
		c.negative[w] = true
	}
	return c
}

func (c *LexiconClassifier) Classify(_ context.Context, text string) (Result, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	var pos, neg int
	for i, w := range words {
		negated := i > 0 && negators[words[i-1]]
		switch {
		case c.positive[w] && !negated, c.negative[w] && negated:
			pos++
		case c.negative[w], c.positive[w]:
			neg++
		}
	}
	total := pos + neg
	switch {
	case total == 0 || pos == neg:
		return Result{Label: "NEUTRAL", Score: 0.5}, nil
	case pos > neg:
		return Result{Label: "POSITIVE", Score: 0.5 + 0.5*float64(pos-neg)/float64(total)}, nil
	default:
		return Result{Label: "NEGATIVE", Score: 0.5 + 0.5*float64(neg-pos)/float64(total)}, nil
	}
}
