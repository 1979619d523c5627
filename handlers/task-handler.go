package handlers

import (
	"net/http"

	"taskflow/backend/api-service/middleware"
	"taskflow/backend/api-service/models"
	"taskflow/backend/api-service/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	query := r.URL.Query()
	filter := services.TaskFilter{
		Status:     models.TaskStatus(query.Get("status")),
		Priority:   models.TaskPriority(query.Get("priority")),
		AssignedTo: query.Get("assignedTo"),
	}

	tasks, err := h.service.ListTasks(r.Context(), user.ID, mux.Vars(r)["id"], filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	var input models.CreateTaskInput
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), user.ID, mux.Vars(r)["id"], &input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	task, err := h.service.GetTask(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	var update models.TaskUpdate
	if err := decodeBody(r, &update); err != nil {
		respondError(w, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), user.ID, mux.Vars(r)["id"], &update)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteTask(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Task deleted")
}
