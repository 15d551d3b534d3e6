package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// ListHandler serves the custom-list resource:
//
//	GET    /custom-lists?createdBy=<id>&isPublic=<bool>
//	POST   /custom-lists
//	GET    /custom-lists/{id}
//	PATCH  /custom-lists/{id}
//	DELETE /custom-lists/{id}
type ListHandler struct {
	repo   models.Repository[*models.CustomList]
	logger *log.Logger
	now    func() time.Time
}

// NewListHandler creates a [ListHandler] over repo.
func NewListHandler(repo models.Repository[*models.CustomList], logger *log.Logger) *ListHandler {
	return &ListHandler{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Routes returns the HTTP routes this handler serves.
func (h *ListHandler) Routes() []string {
	return []string{"/custom-lists", "/custom-lists/{id}"}
}

// ServeHTTP dispatches on method and on whether the path names a list.
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w, "GET, POST")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPatch:
		h.patch(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		methodNotAllowed(w, "GET, PATCH, DELETE")
	}
}

func (h *ListHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	q := r.URL.Query()
	if owner := q.Get("createdBy"); owner != "" {
		criteria["created_by"] = owner
	}
	if raw := q.Get("isPublic"); raw != "" {
		public, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: isPublic must be a boolean", shared.ErrInvalidInput))
			return
		}
		criteria["is_public"] = public
	}

	lists, err := h.repo.List(criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) create(w http.ResponseWriter, r *http.Request) {
	var list models.CustomList
	if err := decodeJSON(w, r, &list); err != nil {
		writeError(w, err)
		return
	}

	list.ID = ""
	if err := h.repo.Create(&list); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Debug("list created", "list", list.ID, "owner", list.CreatedBy)
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) get(w http.ResponseWriter, id string) {
	list, err := h.repo.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// patch merges only the fields present in the body. Items are replaced wholesale.
func (h *ListHandler) patch(w http.ResponseWriter, r *http.Request, id string) {
	var patch models.ListPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.repo.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	patch.Apply(list)
	if patch.UpdatedAt == nil {
		list.UpdatedAt = h.now()
	}
	if err := h.repo.Update(list); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) delete(w http.ResponseWriter, id string) {
	if err := h.repo.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
