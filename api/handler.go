package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler serves the REST API on top of the services.
type Handler struct {
	auth       *service.AuthService
	catalog    *service.CatalogService
	collection *service.CollectionService
	images     *service.ImageService
	assistant  *service.AssistantService
	ping       func(context.Context) error
	logger     zerolog.Logger
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err as a fail/error envelope and records the
// full error in the request log.
func respondServiceError(w http.ResponseWriter, logMessageBuilder *strings.Builder, err error) {
	status := statusFor(err)
	utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Error: %v", err))
	fallback := "Something went wrong"
	if status < http.StatusInternalServerError {
		fallback = err.Error()
	}
	utils.RespondError(w, nil, service.Message(err, fallback), status)
}

// objectIDParam reads a hex ObjectID from the named route parameter.
func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, &service.Error{Kind: service.ErrValidation, Message: "Invalid " + name}
	}
	return id, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.Error{Kind: service.ErrValidation, Message: name + " must be an integer"}
	}
	return v, nil
}

func floatQuery(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &service.Error{Kind: service.ErrValidation, Message: name + " must be a number"}
	}
	return &v, nil
}

// decodeBody decodes a JSON request body, reporting failures as validation errors.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := utils.DecodeJSON(r.Body, dst); err != nil {
		return &service.Error{Kind: service.ErrValidation, Message: "Invalid request body", Err: err}
	}
	return nil
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.logger.Error().Err(err).Msg("health check failed")
			utils.RespondError(w, nil, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
