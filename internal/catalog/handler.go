package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/prakira-pmo/prakira-pmo/internal/platform/httpx"
)

// Handler wires the catalog JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a catalog Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/blp", h.ListBlp)
	r.Post("/blp", h.CreateBlp)
	r.Get("/blp/{id}", h.GetBlp)
	r.Put("/blp/{id}", h.UpdateBlp)
	r.Delete("/blp/{id}", h.DeactivateBlp)

	r.Get("/blnp", h.ListBlnp)
	r.Post("/blnp", h.CreateBlnp)
	r.Get("/blnp/{id}", h.GetBlnp)
	r.Put("/blnp/{id}", h.UpdateBlnp)
	r.Delete("/blnp/{id}", h.DeactivateBlnp)
}

func (h *Handler) ListBlp(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	entries, err := h.service.ListBlp(r.Context(), query, includeInactive)
	if err != nil {
		h.logger.Error("list blp rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (h *Handler) ListBlnp(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	entries, err := h.service.ListBlnp(r.Context(), query, includeInactive)
	if err != nil {
		h.logger.Error("list blnp rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (h *Handler) GetBlp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.GetBlp(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) GetBlnp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.GetBlnp(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) CreateBlp(w http.ResponseWriter, r *http.Request) {
	var req CreateBlpRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	entry, err := h.service.CreateBlp(r.Context(), req, actorFrom(r))
	if err != nil {
		h.logger.Error("create blp rate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) CreateBlnp(w http.ResponseWriter, r *http.Request) {
	var req CreateBlnpRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	entry, err := h.service.CreateBlnp(r.Context(), req, actorFrom(r))
	if err != nil {
		h.logger.Error("create blnp rate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateBlp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateBlpRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	entry, err := h.service.UpdateBlp(r.Context(), id, req, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) UpdateBlnp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateBlnpRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	entry, err := h.service.UpdateBlnp(r.Context(), id, req, actorFrom(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) DeactivateBlp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeactivateBlp(r.Context(), id, actorFrom(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeactivateBlnp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeactivateBlnp(r.Context(), id, actorFrom(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "rate id must be an integer")
		return 0, false
	}
	return id, true
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

// actorFrom reads the principal forwarded by the upstream gateway. Identity
// is not enforced here.
func actorFrom(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "anonymous"
}
