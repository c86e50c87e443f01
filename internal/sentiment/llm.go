package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"echoguard/internal/llm"
)

const systemPrompt = `You are a sentiment classifier. Classify the overall sentiment of the user's text.
Respond with a single JSON object and nothing else:
{"label": "POSITIVE" | "NEGATIVE" | "NEUTRAL", "score": <confidence between 0 and 1>}`

// LLMClassifier asks a chat model for a polarity label.
type LLMClassifier struct {
	client llm.Client
}

func NewLLMClassifier(client llm.Client) *LLMClassifier {
	return &LLMClassifier{client: client}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (Result, error) {
	resp, err := c.client.Generate(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}
	var res Result
	if err := decodeModelJSON(resp.Content, &res); err != nil {
		return Result{}, fmt.Errorf("classify: decode model output: %w", err)
	}
	if strings.TrimSpace(res.Label) == "" {
		return Result{}, fmt.Errorf("classify: model returned empty label")
	}
	res.Label = strings.ToUpper(strings.TrimSpace(res.Label))
	res.Score = clamp01(res.Score)
	return res, nil
}

// decodeModelJSON tolerates models that wrap the JSON object in prose or code fences.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}
