package api

import (
	"log/slog"
	"net/http"

	"github.com/miru0/miru/internal/config"
)

type modelsHandler struct {
	logger *slog.Logger
	models []config.ModelInfo
}

// list returns the configured model capabilities. The listing comes
// exclusively from configuration; without it the array is empty.
func (h *modelsHandler) list(w http.ResponseWriter, _ *http.Request) {
	models := h.models
	if models == nil {
		models = []config.ModelInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models}, h.logger)
}
