package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/utils"
)

// Me returns the signed-in user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"user": user})
}

// ListUsers lists accounts for admins; other users only see themselves
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[List Users API]")

	user, _ := UserFromContext(r.Context())
	if !user.IsAdmin() {
		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"user": user})
		return
	}

	page, err := intQuery(r, "page")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	status := models.AccountStatus(r.URL.Query().Get("status"))
	switch r.URL.Query().Get("isActive") {
	case "true":
		status = models.AccountActive
	case "false":
		status = models.AccountDeactivated
	}

	res, err := h.auth.ListUsers(r.Context(), status, page, limit)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Returned %d users", len(res.Items)))
	utils.RespondList(w, len(res.Items), res.TotalPages(), res.Page, map[string]interface{}{"users": res.Items})
}

// GetUser returns one account
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Get User API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	user, err := h.auth.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"user": user})
}

type userStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// SetUserStatus activates or deactivates an account
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Update User Status API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	var req userStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	if req.IsActive == nil {
		utils.RespondError(w, &logMessageBuilder, "isActive must be a boolean value", http.StatusBadRequest)
		return
	}

	user, err := h.auth.SetUserStatus(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("User %s status set to %s", id.Hex(), user.Status))
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"user": user})
}

type userRoleRequest struct {
	Role models.Role `json:"role"`
}

// SetUserRole changes an account's role
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Update User Role API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	var req userRoleRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	user, err := h.auth.SetUserRole(r.Context(), id, req.Role)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("User %s role set to %s", id.Hex(), user.Role))
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"user": user})
}
