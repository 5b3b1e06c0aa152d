package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
)

// ListCollection returns the caller's entries under one status
func (h *Handler) ListCollection(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[List Collection API]")

	user, _ := UserFromContext(r.Context())
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

	status := models.EntryStatus(r.URL.Query().Get("status"))
	res, err := h.collection.List(r.Context(), user.ID, status, page, limit)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("User %s: %d entries", user.ID.Hex(), len(res.Items)))
	utils.RespondList(w, len(res.Items), res.TotalPages(), res.Page, map[string]interface{}{"collection": res.Items})
}

// CollectionStats returns per-status counts and total spend
func (h *Handler) CollectionStats(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Collection Stats API]")

	user, _ := UserFromContext(r.Context())
	stats, err := h.collection.Stats(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// AddToCollection records a fragrance under a status for the caller
func (h *Handler) AddToCollection(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Add To Collection API]")

	user, _ := UserFromContext(r.Context())
	var req service.EntryInput
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	entry, err := h.collection.Add(r.Context(), user.ID, req)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Added %s as %s", entry.FragranceID.Hex(), entry.Status))
	utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"collection": entry})
}

// UpdateCollectionItem edits the personal fields of an entry
func (h *Handler) UpdateCollectionItem(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Update Collection API]")

	user, _ := UserFromContext(r.Context())
	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	var req service.EntryUpdate
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	entry, err := h.collection.Update(r.Context(), id, user.ID, req)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"collection": entry})
}

// RemoveFromCollection deletes an entry
func (h *Handler) RemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Remove From Collection API]")

	user, _ := UserFromContext(r.Context())
	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	if err := h.collection.Remove(r.Context(), id, user.ID); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Removed entry %s", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// MarkWorn counts one wear of an owned entry
func (h *Handler) MarkWorn(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Mark Worn API]")

	user, _ := UserFromContext(r.Context())
	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	entry, err := h.collection.MarkWorn(r.Context(), id, user.ID)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Entry %s worn %d times", id.Hex(), entry.WearCount))
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"collection": entry})
}
