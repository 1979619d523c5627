package handlers

import (
	"net/http"

	"taskflow/backend/api-service/middleware"
	"taskflow/backend/api-service/models"
	"taskflow/backend/api-service/services"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type addMemberRequest struct {
	UserID string `json:"userId"`
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	projects, err := h.service.ListProjects(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	var req createProjectRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	project, err := h.service.CreateProject(r.Context(), user.ID, req.Name, req.Description, req.Color)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	project, err := h.service.GetProject(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	var update models.ProjectUpdate
	if err := decodeBody(r, &update); err != nil {
		respondError(w, err)
		return
	}

	project, err := h.service.UpdateProject(r.Context(), user.ID, mux.Vars(r)["id"], &update)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteProject(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Project and associated tasks deleted")
}

func (h *ProjectHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	members, err := h.service.GetMembers(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, members)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	var req addMemberRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.AddMember(r.Context(), user.ID, mux.Vars(r)["id"], req.UserID); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Member added to project")
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, services.ErrUnauthorized)
		return
	}

	vars := mux.Vars(r)
	if err := h.service.RemoveMember(r.Context(), user.ID, vars["id"], vars["memberId"]); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Member removed from project")
}
