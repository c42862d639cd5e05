package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/api/middleware"
	"github.com/taskmaster/taskmaster/internal/api/respond"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueTime     time.Time           `json:"dueTime"`
	Priority    domain.TaskPriority `json:"priority"`
}

func (r *CreateTaskRequest) validate() string {
	if r.Title == "" {
		return "Title is required"
	}
	if r.Description == "" {
		return "Description is required"
	}
	if r.DueTime.IsZero() {
		return "Due time is required"
	}
	if r.Priority != "" && !domain.ValidTaskPriority(r.Priority) {
		return "Invalid priority"
	}
	return ""
}

type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	DueTime     *time.Time           `json:"dueTime"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
}

func (r *UpdateTaskRequest) validate() string {
	if r.Title != nil && *r.Title == "" {
		return "Title must not be empty"
	}
	if r.Description != nil && *r.Description == "" {
		return "Description must not be empty"
	}
	if r.Status != nil && !domain.ValidTaskStatus(*r.Status) {
		return "Invalid status"
	}
	if r.Priority != nil && !domain.ValidTaskPriority(*r.Priority) {
		return "Invalid priority"
	}
	return ""
}

type DeleteTaskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskService.Create(r.Context(), identity.ID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueTime:     req.DueTime,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, "tasks.Create", err)
		return
	}

	respond.JSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	var status *domain.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.TaskStatus(raw)
		if !domain.ValidTaskStatus(s) {
			respond.Error(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = &s
	}

	result, err := h.taskService.List(r.Context(), identity.ID, page, limit, status)
	if err != nil {
		writeServiceError(w, "tasks.List", err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), identity.ID, taskID)
	if err != nil {
		writeServiceError(w, "tasks.Get", err)
		return
	}

	respond.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskService.Update(r.Context(), identity.ID, taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueTime:     req.DueTime,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, "tasks.Update", err)
		return
	}

	respond.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Delete(r.Context(), identity.ID, taskID)
	if err != nil {
		writeServiceError(w, "tasks.Delete", err)
		return
	}

	respond.JSON(w, http.StatusOK, DeleteTaskResponse{
		Message: "Task deleted successfully",
		Task:    task,
	})
}

func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query().Get("query")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	result, err := h.taskService.Search(r.Context(), identity.ID, query, page, limit)
	if err != nil {
		writeServiceError(w, "tasks.Search", err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

// taskIDParam parses the {id} path param. An unparseable id is reported as
// not found, keeping it indistinguishable from a task the caller doesn't
// own.
func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Task not found")
		return uuid.Nil, false
	}
	return taskID, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			return val
		}
	}
	return fallback
}
