package api

import (
	"net/http"
	"strings"

	"github.com/raushankrgupta/fragrance-collection/utils"
)

type chatRequest struct {
	Message string `json:"message"`
}

// SendChatMessage sends one message to the fragrance assistant
func (h *Handler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Chat API]")

	user, _ := UserFromContext(r.Context())
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	reply, err := h.assistant.Send(r.Context(), user.ID, req.Message)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, reply)
}

// ChatHistory returns the caller's conversation
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Chat History API]")

	user, _ := UserFromContext(r.Context())
	messages, err := h.assistant.History(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
