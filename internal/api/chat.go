package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/miru0/miru/internal/chat"
)

// streamChunkSize is the rune count per SSE chunk event.
const streamChunkSize = 48

// maxRequestBody caps chat request bodies at 1 MiB.
const maxRequestBody = 1 << 20

type chatHandler struct {
	logger  *slog.Logger
	service ConversationService
}

// chatRequest is the request payload of both chat endpoints.
type chatRequest struct {
	Messages []chat.Message `json:"messages"`
	Lang     string         `json:"lang"`
	Options  *chat.Options  `json:"options"`
}

func (req *chatRequest) options() chat.Options {
	if req.Options == nil {
		return chat.DefaultOptions()
	}
	return *req.Options
}

// decodeChatRequest parses and validates the request body. An empty
// message list is a 400-level error.
func decodeChatRequest(w http.ResponseWriter, r *http.Request) (*chatRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if len(req.Messages) == 0 {
		return nil, chat.ErrNoMessages
	}
	return &req, nil
}

// send handles POST /api/chat: one conversation turn, plain JSON reply.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	result, err := h.service.RunConversation(r.Context(), req.Messages, req.Lang, req.options(), clientIP(r))
	if err != nil {
		h.logger.Error("conversation failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error(), h.logger)
		return
	}

	if result.ToolEvents == nil {
		result.ToolEvents = []chat.ToolEvent{}
	}
	writeJSON(w, http.StatusOK, result, h.logger)
}

// stream handles POST /api/chat/stream. The full turn runs first; its
// reply content is then replayed as SSE chunk events, followed by one
// tools event when any tool ran, and a terminal [DONE] frame. A failed
// turn becomes a single error event.
func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	result, err := h.service.RunConversation(r.Context(), req.Messages, req.Lang, req.options(), clientIP(r))
	if err != nil {
		h.logger.Error("conversation failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		h.writeEvent(w, flusher, map[string]any{"type": "error", "detail": err.Error()})
		return
	}

	for _, reply := range result.Replies {
		if reply.Role != "assistant" || reply.Content == "" {
			continue
		}
		for _, delta := range chunkContent(reply.Content, streamChunkSize) {
			h.writeEvent(w, flusher, map[string]any{"type": "chunk", "delta": delta})
		}
	}

	if len(result.ToolEvents) > 0 {
		h.writeEvent(w, flusher, map[string]any{"type": "tools", "tool_events": result.ToolEvents})
	}

	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		h.logger.Debug("writing SSE terminator", "error", err)
		return
	}
	flusher.Flush()
}

// writeEvent emits one SSE data frame.
func (h *chatHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encoding SSE event", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		h.logger.Debug("writing SSE event", "error", err)
		return
	}
	flusher.Flush()
}

// chunkContent splits content into size-rune pieces, so multi-byte
// characters are never cut mid-sequence.
func chunkContent(content string, size int) []string {
	runes := []rune(content)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
