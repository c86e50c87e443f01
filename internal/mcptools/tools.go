// Package mcptools exposes the analysis service as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"echoguard/internal/analysis"
	"echoguard/internal/records"
)

type AnalyzeParams struct {
	Text string `json:"text" mcp:"free text to classify and screen for crisis phrases"`
}

type ListParams struct {
	Limit int `json:"limit,omitempty" mcp:"return only the most recent N records (default: all)"`
}

type DeleteParams struct {
	ID string `json:"id" mcp:"id of the record to delete"`
}

type Tools struct {
	svc *analysis.Service
}

func New(svc *analysis.Service) *Tools {
	return &Tools{svc: svc}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_text",
		Description: "Classifies the sentiment of a text, flags crisis phrases and stores the analysis record",
	}, t.Analyze)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "Lists stored analysis records, oldest first",
	}, t.List)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_record",
		Description: "Deletes a stored analysis record by id",
	}, t.Delete)
}

func (t *Tools) Analyze(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AnalyzeParams]) (*mcp.CallToolResultFor[any], error) {
	out, err := t.svc.Analyze(ctx, params.Arguments.Text)
	if err != nil {
		if ve, ok := analysis.IsValidation(err); ok {
			return errorResult(ve.Message), nil
		}
		log.Printf("❌ MCP analyze failed: %v", err)
		return errorResult("analysis failed"), nil
	}

	rec := out.Record
	text := fmt.Sprintf("Emotion: %s (confidence %.2f)\nCrisis: %t\nAlert sent: %t\nRecord: %s",
		rec.Emotion, rec.Confidence, rec.IsCrisis, out.AlertSent, rec.ID)
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		Meta: map[string]interface{}{
			"record":            rec,
			"crisis_alert_sent": out.AlertSent,
		},
	}, nil
}

func (t *Tools) List(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListParams]) (*mcp.CallToolResultFor[any], error) {
	recs, err := t.svc.List()
	if err != nil {
		log.Printf("❌ MCP list failed: %v", err)
		return errorResult("failed to load records"), nil
	}
	if limit := params.Arguments.Limit; limit > 0 && limit < len(recs) {
		recs = recs[len(recs)-limit:]
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		Meta:    map[string]interface{}{"total": len(recs)},
	}, nil
}

func (t *Tools) Delete(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[DeleteParams]) (*mcp.CallToolResultFor[any], error) {
	id := params.Arguments.ID
	if id == "" {
		return errorResult("id parameter is required"), nil
	}
	if err := t.svc.Delete(id); err != nil {
		if errors.Is(err, records.ErrStoreNotFound) {
			return errorResult("no records found"), nil
		}
		log.Printf("❌ MCP delete failed: %v", err)
		return errorResult("failed to delete record"), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: "Record deleted"}},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "❌ " + msg}},
	}
}
