package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/miru0/miru/internal/chat"
	"github.com/miru0/miru/internal/config"
)

// ConversationService runs one conversation turn. Implemented by
// chat.Service; abstracted so handler tests can stub it.
type ConversationService interface {
	RunConversation(ctx context.Context, messages []chat.Message, lang string, opts chat.Options, clientIP string) (*chat.Result, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Service     ConversationService // Required
	Models      []config.ModelInfo  // Model capability listing (may be empty)
	CORSOrigins []string            // Allowed origins for CORS
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("conversation service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{logger: logger, service: cfg.Service}
	mh := &modelsHandler{logger: logger, models: cfg.Models}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/models", mh.list)
	mux.HandleFunc("POST /api/chat", ch.send)
	mux.HandleFunc("POST /api/chat/stream", ch.stream)

	// Middleware stack (outermost first):
	//   Recovery -> RequestID -> Logging -> CORS -> Routes
	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux keeps the health probe outside the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", healthHandler(logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
