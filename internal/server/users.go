package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinelist/internal/models"
)

// UserHandler serves GET /users?email=, GET /users/{id} and POST /users.
type UserHandler struct {
	repo   models.Repository[*models.User]
	logger *log.Logger
}

// NewUserHandler creates a [UserHandler] over repo.
func NewUserHandler(repo models.Repository[*models.User], logger *log.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *UserHandler) Routes() []string {
	return []string{"/users", "/users/{id}"}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch {
	case id == "" && r.Method == http.MethodGet:
		users, err := h.repo.List(map[string]any{"email": r.URL.Query().Get("email")})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	case id == "" && r.Method == http.MethodPost:
		var user models.User
		if err := decodeJSON(w, r, &user); err != nil {
			writeError(w, err)
			return
		}
		user.ID = ""
		if err := h.repo.Create(&user); err != nil {
			writeError(w, err)
			return
		}
		h.logger.Debug("user registered", "user", user.ID)
		writeJSON(w, http.StatusCreated, user)
	case id != "" && r.Method == http.MethodGet:
		user, err := h.repo.Get(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case id == "":
		methodNotAllowed(w, "GET, POST")
	default:
		methodNotAllowed(w, "GET")
	}
}
