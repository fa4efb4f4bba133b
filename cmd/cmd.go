// Package cmd provides the miru command line entry points.
//
// Commands:
//   - serve: HTTP API server with SSE streaming
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/miru0/miru/internal/log"
)

// Execute is the main entry point for the miru CLI.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Miru - conversational agent demo backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  miru serve [addr]  Start the HTTP API server (default: 127.0.0.1:8000)")
	fmt.Println("  miru --version     Show version information")
	fmt.Println("  miru --help        Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  LLM_MODEL_NAME     Model to serve (default: qwen3)")
	fmt.Println("  LLM_MODEL_TYPE     Backend type: oai or qwen_dashscope (default: oai)")
	fmt.Println("  LLM_API_BASE       OpenAI-compatible base URL (default: http://localhost:11434/v1)")
	fmt.Println("  LLM_API_KEY        Credential for oai backends")
	fmt.Println("  DASHSCOPE_API_KEY  Credential for DashScope backends")
	fmt.Println("  MIRU_ADDR          Listen address (default: 127.0.0.1:8000)")
	fmt.Println("  DEBUG              Enable debug logging")
}
