package mcptools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoguard/internal/analysis"
	"echoguard/internal/records"
	"echoguard/internal/sentiment"
)

func newTools(t *testing.T) *Tools {
	t.Helper()
	repo, err := records.NewFileRepository(filepath.Join(t.TempDir(), "emotions.json"))
	require.NoError(t, err)
	return New(analysis.NewService(sentiment.NewLexiconClassifier(), repo, nil))
}

func resultText(res *mcp.CallToolResultFor[any]) string {
	var sb strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestAnalyzeTool(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	res, err := tools.Analyze(ctx, nil, &mcp.CallToolParamsFor[AnalyzeParams]{Arguments: AnalyzeParams{Text: "I feel worthless"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(res), "Crisis: true")
	rec, ok := res.Meta["record"].(records.Record)
	require.True(t, ok)
	assert.True(t, rec.IsCrisis)

	res, err = tools.Analyze(ctx, nil, &mcp.CallToolParamsFor[AnalyzeParams]{Arguments: AnalyzeParams{Text: " "}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "no text provided")
}

func TestListAndDeleteTools(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	res, err := tools.Delete(ctx, nil, &mcp.CallToolParamsFor[DeleteParams]{Arguments: DeleteParams{ID: "x"}})
	require.NoError(t, err)
	assert.True(t, res.IsError, "delete without a store reports an error")

	for _, text := range []string{"one", "two", "three"} {
		_, err := tools.Analyze(ctx, nil, &mcp.CallToolParamsFor[AnalyzeParams]{Arguments: AnalyzeParams{Text: text}})
		require.NoError(t, err)
	}

	res, err = tools.List(ctx, nil, &mcp.CallToolParamsFor[ListParams]{Arguments: ListParams{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Meta["total"])
	body := resultText(res)
	assert.NotContains(t, body, `"one"`)
	assert.Contains(t, body, `"three"`)

	res, err = tools.Delete(ctx, nil, &mcp.CallToolParamsFor[DeleteParams]{Arguments: DeleteParams{}})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.Delete(ctx, nil, &mcp.CallToolParamsFor[DeleteParams]{Arguments: DeleteParams{ID: "missing"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}
