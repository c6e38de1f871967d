package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Friend_Manager/internal/hub"
	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/Dias221467/Friend_Manager/internal/services"
	"github.com/Dias221467/Friend_Manager/pkg/logger"
	"github.com/Dias221467/Friend_Manager/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
	Hub     *hub.Hub
}

// NewFriendHandler initializes a new FriendHandler. events may be nil.
func NewFriendHandler(service *services.FriendService, events *hub.Hub) *FriendHandler {
	return &FriendHandler{Service: service, Hub: events}
}

// SendFriendRequestHandler sends a friend request to body.to_user.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		logger.Log.Warn("Unauthorized attempt to send friend request")
		return
	}

	var body struct {
		ToUser string `json:"to_user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ToUser == "" {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		logger.Log.Warnf("Invalid friend request payload: %v", err)
		return
	}

	request, err := h.Service.CreateFriendRequest(r.Context(), claims.UserID, body.ToUser)
	if err != nil {
		writeServiceError(w, r, err, "Failed to send friend request")
		return
	}

	view, ok := h.describeOne(w, r, request)
	if !ok {
		return
	}

	logger.Log.Infof("User %s sent a friend request to %s", claims.UserID, body.ToUser)
	h.publish(hub.EventFriendRequestCreated, view)
	writeJSON(w, http.StatusCreated, view)
}

// GetPendingRequestsHandler shows all incoming pending friend requests.
func (h *FriendHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		logger.Log.Warn("Unauthorized attempt to get pending requests")
		return
	}

	requests, err := h.Service.ListPendingFor(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to get pending requests")
		return
	}
	views, err := h.Service.Describe(r.Context(), requests)
	if err != nil {
		writeServiceError(w, r, err, "Failed to describe pending requests")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetFriendsHandler returns the users linked to the caller by an accepted request.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		logger.Log.Warn("Unauthorized attempt to get friends")
		return
	}

	friends, err := h.Service.ListFriendsOf(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to get friends")
		return
	}

	public := make([]models.PublicUser, 0, len(friends))
	for _, f := range friends {
		public = append(public, f.Public())
	}
	writeJSON(w, http.StatusOK, public)
}

// FriendshipHandler reports whether the caller and the user in the path are friends.
func (h *FriendHandler) FriendshipHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherID := mux.Vars(r)["id"]
	friends, err := h.Service.AreFriends(r.Context(), claims.UserID, otherID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to check friendship")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   otherID,
		"is_friend": friends,
	})
}

// GetFriendRequestHandler returns one request to either of its parties.
func (h *FriendHandler) GetFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	request, err := h.Service.GetFriendRequest(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to get friend request")
		return
	}
	view, ok := h.describeOne(w, r, request)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ResolveFriendRequestHandler accepts or rejects a pending request addressed to the caller.
func (h *FriendHandler) ResolveFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		logger.Log.Warn("Unauthorized request to resolve a friend request")
		return
	}

	var body struct {
		Status models.FriendRequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		logger.Log.Warnf("Failed to decode resolve body: %v", err)
		return
	}

	request, err := h.Service.ResolveFriendRequest(r.Context(), requestID, claims.UserID, body.Status)
	if err != nil {
		writeServiceError(w, r, err, "Failed to resolve friend request")
		return
	}

	view, ok := h.describeOne(w, r, request)
	if !ok {
		return
	}

	logger.Log.Infof("User %s resolved friend request %s as %s", claims.UserID, requestID, request.Status)
	h.publish(hub.EventFriendRequestResolved, view)
	writeJSON(w, http.StatusOK, view)
}

func (h *FriendHandler) describeOne(w http.ResponseWriter, r *http.Request, request *models.FriendRequest) (models.FriendRequestView, bool) {
	views, err := h.Service.Describe(r.Context(), []models.FriendRequest{*request})
	if err != nil {
		writeServiceError(w, r, err, "Failed to describe friend request")
		return models.FriendRequestView{}, false
	}
	return views[0], true
}

func (h *FriendHandler) publish(eventType string, view models.FriendRequestView) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(hub.Event{Type: eventType, Payload: view}, view.FromUser.ID, view.ToUser.ID)
}
