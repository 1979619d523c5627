package handlers

import (
	"net/http"

	"taskflow/backend/api-service/services"
)

type AIHandler struct {
	service *services.AIService
}

func NewAIHandler(service *services.AIService) *AIHandler {
	return &AIHandler{service: service}
}

type breakdownRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Breakdown asks the generative API for 3-5 subtask strings.
func (h *AIHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	var req breakdownRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	subtasks, err := h.service.BreakdownTask(r.Context(), req.Title, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, subtasks)
}
