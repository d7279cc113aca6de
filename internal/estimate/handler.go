package estimate

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/prakira-pmo/prakira-pmo/internal/platform/httpx"
)

// Handler wires the estimate JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an estimate Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers estimate routes on the provided router. Lines are
// addressed by list position, not row id: the dashboard works against the
// ordered list it just fetched.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/lines", h.AddLine)
	r.Patch("/{id}/lines/{index}", h.UpdateLine)
	r.Delete("/{id}/lines/{index}", h.RemoveLine)

	r.Post("/{id}/finalize", h.Finalize)
	r.Post("/{id}/recost", h.Recost)
	r.Get("/{id}/export.csv", h.ExportCSV)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListEstimatesRequest{}
	q := r.URL.Query()
	if v := q.Get("project_id"); v != "" {
		projectID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "project_id must be an integer")
			return
		}
		req.ProjectID = &projectID
	}
	if v := q.Get("status"); v != "" {
		status := EstimateStatus(v)
		req.Status = &status
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	estimates, page, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list estimates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": estimates, "pagination": page})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEstimateRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	e, err := h.service.Create(r.Context(), req, actorFrom(r))
	if err != nil {
		h.logger.Error("create estimate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateEstimateRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	e, err := h.service.Update(r.Context(), id, req, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, actorFrom(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req AddLineRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	e, err := h.service.AddLine(r.Context(), id, req, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	var patch LineUpdate
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	e, err := h.service.UpdateLine(r.Context(), id, index, patch, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	e, err := h.service.RemoveLine(r.Context(), id, index, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	e, err := h.service.Finalize(r.Context(), id, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Recost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	result, err := h.service.Recost(r.Context(), id, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+e.DocNumber+`.csv"`)
	if err := WriteCSV(w, e); err != nil {
		h.logger.Error("export estimate csv", slog.Any("error", err), slog.Int64("estimate_id", id))
	}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "estimate id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Index", "line index must be an integer")
		return 0, false
	}
	return index, true
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

// actorFrom reads the principal forwarded by the upstream gateway.
func actorFrom(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "anonymous"
}
