package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
)

func respondAuth(w http.ResponseWriter, status int, res *service.AuthResult) {
	utils.RespondJSON(w, status, map[string]interface{}{
		"status": "success",
		"token":  res.Token,
		"data":   map[string]interface{}{"user": res.User},
	})
}

// Register handles account creation
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Register API]")

	var req service.Credentials
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Registered user %s", res.User.ID.Hex()))
	respondAuth(w, http.StatusCreated, res)
}

// Login handles username/password sign in
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Login API]")

	var req service.Credentials
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("User %s logged in", res.User.ID.Hex()))
	respondAuth(w, http.StatusOK, res)
}

// Logout acknowledges a sign out. Tokens are stateless, so the client discards it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondMessage(w, http.StatusOK, "Logged out successfully")
}
