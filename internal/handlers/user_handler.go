package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Friend_Manager/internal/config"
	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/Dias221467/Friend_Manager/internal/services"
	jwtutil "github.com/Dias221467/Friend_Manager/pkg/jwt"
	"github.com/Dias221467/Friend_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// SignupHandler creates an account and returns a token for it.
func (h *UserHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode signup request")
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), body.Email, body.Name, body.Password)
	if err != nil {
		writeServiceError(w, r, err, "Failed to register user")
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
	log.WithField("userID", user.ID).Info("User registered successfully")
}

// LoginHandler exchanges credentials for a token.
func (h *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		writeServiceError(w, r, err, "Authentication failed")
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
	log.WithField("userID", user.ID).Info("User logged in successfully")
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.IsStaff, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, User: user.Public()})
}

// ListUsersHandler pages through the directory.
func (h *UserHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.Service.ListUsers(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, NewPaginatedResponse(page, models.User.Public))
}

// SearchUsersHandler searches by exact email when q contains "@", otherwise by name.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query().Get("q")
	page, err := h.Service.SearchUsers(r.Context(), query, p)
	if err != nil {
		writeServiceError(w, r, err, "Failed to search users")
		return
	}

	log.WithFields(log.Fields{
		"query":   query,
		"results": page.Total,
	}).Debug("User search")
	writeJSON(w, http.StatusOK, NewPaginatedResponse(page, models.User.Public))
}

// GetUserHandler returns the public profile of the user in the path.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "Failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// GetMeHandler returns the full record of the authenticated user.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to get current user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
