package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
)

func fragranceQuery(r *http.Request) (service.FragranceQuery, error) {
	q := r.URL.Query()
	fq := service.FragranceQuery{
		Category:      q.Get("category"),
		Brand:         q.Get("brand"),
		Gender:        q.Get("gender"),
		Concentration: q.Get("concentration"),
		Search:        q.Get("search"),
		SortBy:        q.Get("sortBy"),
		SortOrder:     q.Get("sortOrder"),
	}

	var err error
	if fq.MinPrice, err = floatQuery(r, "minPrice"); err != nil {
		return fq, err
	}
	if fq.MaxPrice, err = floatQuery(r, "maxPrice"); err != nil {
		return fq, err
	}
	if fq.MinRating, err = floatQuery(r, "minRating"); err != nil {
		return fq, err
	}
	if fq.Page, err = intQuery(r, "page"); err != nil {
		return fq, err
	}
	if fq.Limit, err = intQuery(r, "limit"); err != nil {
		return fq, err
	}
	return fq, nil
}

// ListFragrances returns a filtered page of the catalog
func (h *Handler) ListFragrances(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[List Fragrances API]")

	query, err := fragranceQuery(r)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	page, err := h.catalog.List(r.Context(), query)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Returned %d of %d fragrances", len(page.Items), page.Total))
	utils.RespondList(w, len(page.Items), page.TotalPages(), page.Page, map[string]interface{}{"fragrances": page.Items})
}

// Categories lists categories in use
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Categories API]")

	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// Brands lists brands in use, sorted
func (h *Handler) Brands(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Brands API]")

	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"brands": brands})
}

// GetFragrance returns one active fragrance
func (h *Handler) GetFragrance(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Get Fragrance API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	fragrance, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"fragrance": fragrance})
}

// CreateFragrance adds a catalog record
func (h *Handler) CreateFragrance(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Create Fragrance API]")

	var req service.FragranceInput
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	fragrance, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Created fragrance %s", fragrance.ID.Hex()))
	utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"fragrance": fragrance})
}

// UpdateFragrance edits catalog fields of a record
func (h *Handler) UpdateFragrance(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Update Fragrance API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	var req service.FragranceUpdate
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	fragrance, err := h.catalog.Update(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"fragrance": fragrance})
}

// ArchiveFragrance soft-deletes a record
func (h *Handler) ArchiveFragrance(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Delete Fragrance API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	if err := h.catalog.Archive(r.Context(), id); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Archived fragrance %s", id.Hex()))
	utils.RespondMessage(w, http.StatusOK, "Fragrance deleted successfully")
}

type ratingRequest struct {
	Rating *float64 `json:"rating"`
}

// SubmitRating folds a user's rating into the catalog mean
func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Submit Rating API]")

	id, err := objectIDParam(r, "id")
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	var req ratingRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}
	if req.Rating == nil {
		utils.RespondError(w, &logMessageBuilder, "rating must be between 0 and 5", http.StatusBadRequest)
		return
	}

	fragrance, err := h.catalog.SubmitRating(r.Context(), id, *req.Rating)
	if err != nil {
		respondServiceError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Fragrance %s rated %.1f (%d ratings)", id.Hex(), fragrance.Rating, fragrance.TotalRatings))
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"fragrance": fragrance})
}
