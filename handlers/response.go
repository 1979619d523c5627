package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskflow/backend/api-service/logging"
	"taskflow/backend/api-service/models"
	"taskflow/backend/api-service/services"
)

// Every response uses the envelope {success, data|message}.

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: Failed to encode response: %v", err)
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": status < http.StatusBadRequest,
		"message": message,
	})
}

// respondError maps the service error taxonomy onto status codes:
// field errors 400, unauthorized 401, forbidden 403, not-found 404,
// upstream failures 500 with the raw error and a suggestion, anything
// else a generic 500 carrying the underlying message.
func respondError(w http.ResponseWriter, err error) {
	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		respondMessage(w, http.StatusBadRequest, fieldErr.Message)
		return
	}

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success":    false,
			"message":    "Failed to generate subtasks",
			"error":      upstream.Err.Error(),
			"suggestion": upstream.Suggestion,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		respondMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())
	default:
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: Unclassified error: %v", err)
		respondMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON request body, rejecting unknown fields so
// immutable attributes cannot be smuggled through update payloads.
func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return models.NewFieldError("invalid request body: " + err.Error())
	}
	return nil
}
