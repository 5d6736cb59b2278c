package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"school-inventory/internal/service"
)

// AssistantHandler relays chat messages to the assistant webhook.
type AssistantHandler struct {
	assistant *service.AssistantClient
	logger    *zap.Logger
}

func NewAssistantHandler(assistant *service.AssistantClient, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: logger}
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Chat handles POST /api/v1/assistant/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !h.assistant.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, Fail("assistant is not configured"))
		return
	}

	var req chatRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.assistant.Ask(r.Context(), req.Message)
	if err != nil {
		h.logger.Warn("assistant call failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, Fail("assistant is unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"response": reply}))
}
