package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"echoguard/internal/bootstrap"
	"echoguard/internal/config"
	"echoguard/internal/mcptools"
)

func main() {
	// stdout carries the MCP protocol, so logs go to stderr
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	app, err := bootstrap.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init EchoGuard: %v", err)
	}
	log.Printf("🚨 Crisis alerts via: %s", strings.Join(app.Dispatcher.Channels(), ", "))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "echoguard-mcp",
		Version: "1.0.0",
	}, nil)
	mcptools.New(app.Service).Register(server)

	log.Printf("📋 Registered EchoGuard MCP tools: analyze_text, list_records, delete_record")
	log.Printf("🔗 Starting EchoGuard MCP server on stdin/stdout...")

	if err := server.Run(context.Background(), mcp.NewStdioTransport()); err != nil {
		log.Fatalf("❌ EchoGuard MCP Server failed: %v", err)
	}
}
