package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskmaster-app/taskmaster/internal/observability"
	"github.com/taskmaster-app/taskmaster/internal/platform/httpx"
	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// Handler wires HTTP endpoints for the task resource. Every route runs
// behind the bearer-token verifier, so the identity is always in context.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

// MountRoutes registers task routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	DueDate     OptionalDate `json:"due_date"`
}

type taskResponse struct {
	Message string `json:"message"`
	Task    *Task  `json:"task"`
}

type listResponse struct {
	Tasks      []Task            `json:"tasks"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := shared.IdentityFromContext(r.Context())
	query := r.URL.Query()

	filters := ListFilters{}
	if v := query.Get("status"); v != "" {
		status := Status(v)
		filters.Status = &status
	}
	if v := query.Get("priority"); v != "" {
		priority := Priority(v)
		filters.Priority = &priority
	}

	page, limit := DefaultPage, DefaultLimit
	verr := &shared.ValidationError{}
	if v := query.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Add("page", "must be a positive integer")
		} else {
			page = n
		}
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Add("limit", "must be between 1 and 100")
		} else {
			limit = n
		}
	}
	if !verr.Empty() {
		httpx.RespondError(w, verr)
		return
	}

	result, err := h.service.List(r.Context(), identity.UserID, filters, page, limit)
	if err != nil {
		h.respondServiceError(w, "list tasks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Tasks: result.Tasks, Pagination: result.Pagination})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, _ := shared.IdentityFromContext(r.Context())
	taskID, err := parseTaskID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	task, err := h.service.Get(r.Context(), identity.UserID, taskID)
	if err != nil {
		h.respondServiceError(w, "get task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := shared.IdentityFromContext(r.Context())

	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.KindValidation, "invalid request body")
		return
	}

	task, err := h.service.Create(r.Context(), identity.UserID, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    toPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondServiceError(w, "create task", err)
		return
	}

	h.metrics.CountTaskMutation("create")
	httpx.JSON(w, http.StatusCreated, taskResponse{Message: "Task created successfully", Task: task})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, _ := shared.IdentityFromContext(r.Context())
	taskID, err := parseTaskID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.KindValidation, "invalid request body")
		return
	}

	task, err := h.service.Update(r.Context(), identity.UserID, taskID, UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      toStatus(req.Status),
		Priority:    toPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondServiceError(w, "update task", err)
		return
	}

	h.metrics.CountTaskMutation("update")
	httpx.JSON(w, http.StatusOK, taskResponse{Message: "Task updated successfully", Task: task})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := shared.IdentityFromContext(r.Context())
	taskID, err := parseTaskID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, taskID); err != nil {
		h.respondServiceError(w, "delete task", err)
		return
	}

	h.metrics.CountTaskMutation("delete")
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// parseTaskID reads the id route parameter. A non-numeric id can never
// match a row, so it reports not-found rather than a validation error.
func parseTaskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	var verr *shared.ValidationError
	if !errors.As(err, &verr) && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toStatus(v *string) *Status {
	if v == nil {
		return nil
	}
	status := Status(*v)
	return &status
}

func toPriority(v *string) *Priority {
	if v == nil {
		return nil
	}
	priority := Priority(*v)
	return &priority
}
