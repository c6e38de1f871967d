package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/config"
	"github.com/Dias221467/Friend_Manager/internal/handlers"
	"github.com/Dias221467/Friend_Manager/internal/hub"
	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/Dias221467/Friend_Manager/internal/repository"
	"github.com/Dias221467/Friend_Manager/internal/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	hub     *hub.Hub
	cfg     *config.Config
}

func newTestServer(t *testing.T, rate, burst int) *testServer {
	t.Helper()
	cfg := &config.Config{
		StorageDriver:      config.DriverMemory,
		JWTSecret:          "router-secret",
		TokenExpiry:        time.Hour,
		DBTimeout:          5 * time.Second,
		FriendRequestRate:  rate,
		FriendRequestBurst: burst,
		CORSOrigins:        []string{"http://localhost:3000"},
	}
	users := repository.NewMemoryUserRepository()
	requests := repository.NewMemoryFriendRequestRepository()
	events := hub.NewHub()

	return &testServer{
		t: t,
		handler: New(Dependencies{
			Config:  cfg,
			Users:   services.NewUserService(users),
			Friends: services.NewFriendService(requests, users),
			Hub:     events,
		}),
		hub: events,
		cfg: cfg,
	}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type account struct {
	ID    string
	Token string
}

func (s *testServer) signup(email, name string) account {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/signup", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[handlers.AuthResponse](s.t, rr)
	return account{ID: resp.User.ID, Token: resp.Token}
}

func (s *testServer) sendRequest(from account, to string) models.FriendRequestView {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/friend-requests", from.Token, map[string]string{"to_user": to})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.FriendRequestView](s.t, rr)
}

func TestPing(t *testing.T) {
	s := newTestServer(t, 0, 1)
	rr := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t, 0, 1)

	rr := s.do(http.MethodPost, "/signup", "", map[string]string{
		"email": "Alice@Example.com", "name": "Alice", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	signup := decode[handlers.AuthResponse](t, rr)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "alice@example.com", signup.User.Email)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = s.do(http.MethodPost, "/signup", "", map[string]string{
		"email": "alice@example.com", "name": "Again", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(http.MethodPost, "/signup", "", map[string]string{"email": "bad", "name": "X", "password": "p"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/login", "", map[string]string{"email": "ALICE@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rr.Code)
	login := decode[handlers.AuthResponse](t, rr)
	assert.Equal(t, signup.User, login.User)

	rr = s.do(http.MethodPost, "/login", "", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, "/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[models.User](t, rr)
	assert.Equal(t, signup.User.ID, me.ID)
	assert.True(t, me.IsActive)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, 0, 1)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/search?q=a"},
		{http.MethodGet, "/users/me"},
		{http.MethodPost, "/friend-requests"},
		{http.MethodGet, "/friend-requests/pending"},
		{http.MethodGet, "/friend-requests/accepted"},
		{http.MethodPatch, "/friend-requests/abc"},
	} {
		rr := s.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
	}
}

func TestUserDirectory(t *testing.T) {
	s := newTestServer(t, 0, 1)
	alice := s.signup("alice@example.com", "Alice Liddell")
	s.signup("bob@example.com", "Bob Alison")
	s.signup("carol@example.com", "Carol")

	rr := s.do(http.MethodGet, "/users/search?q=ali", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	byName := decode[handlers.PaginatedResponse[models.PublicUser]](t, rr)
	assert.Len(t, byName.Data, 2)
	assert.Equal(t, int64(2), byName.Meta.TotalItems)

	rr = s.do(http.MethodGet, "/users/search?q=CAROL@example.com", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	byEmail := decode[handlers.PaginatedResponse[models.PublicUser]](t, rr)
	require.Len(t, byEmail.Data, 1)
	assert.Equal(t, "Carol", byEmail.Data[0].Name)

	rr = s.do(http.MethodGet, "/users?page=2&limit=2", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[handlers.PaginatedResponse[models.PublicUser]](t, rr)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, handlers.PaginationMeta{TotalItems: 3, TotalPages: 2, CurrentPage: 2, PageSize: 2}, page.Meta)

	rr = s.do(http.MethodGet, "/users?page=abc", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, path := range []string{
		"/users/search?q=&page=9223372036854775807&limit=10",
		"/users?page=9223372036854775807&limit=100",
	} {
		rr = s.do(http.MethodGet, path, alice.Token, nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		far := decode[handlers.PaginatedResponse[models.PublicUser]](t, rr)
		assert.Empty(t, far.Data)
		assert.Equal(t, int64(3), far.Meta.TotalItems)
		assert.Equal(t, models.MaxPage, far.Meta.CurrentPage)
	}

	rr = s.do(http.MethodGet, "/users/"+alice.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice Liddell", decode[models.PublicUser](t, rr).Name)

	rr = s.do(http.MethodGet, "/users/missing", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFriendRequestLifecycle(t *testing.T) {
	s := newTestServer(t, 0, 1)
	alice := s.signup("alice@example.com", "Alice")
	bob := s.signup("bob@example.com", "Bob")
	carol := s.signup("carol@example.com", "Carol")

	view := s.sendRequest(alice, bob.ID)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, "alice@example.com", view.FromUser.Email)
	assert.Equal(t, "bob@example.com", view.ToUser.Email)

	testCases := []struct {
		name           string
		from           account
		to             string
		expectedStatus int
	}{
		{"duplicate", alice, bob.ID, http.StatusConflict},
		{"self", alice, alice.ID, http.StatusBadRequest},
		{"unknown recipient", alice, "nobody", http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := s.do(http.MethodPost, "/friend-requests", tc.from.Token, map[string]string{"to_user": tc.to})
			assert.Equal(t, tc.expectedStatus, rr.Code, rr.Body.String())
		})
	}

	rr := s.do(http.MethodGet, "/friend-requests/pending", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	pending := decode[[]models.FriendRequestView](t, rr)
	require.Len(t, pending, 1)
	assert.Equal(t, view.ID, pending[0].ID)

	rr = s.do(http.MethodGet, "/friend-requests/"+view.ID, carol.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.do(http.MethodGet, "/friend-requests/"+view.ID, alice.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	resolve := func(a account, status string) *httptest.ResponseRecorder {
		return s.do(http.MethodPatch, "/friend-requests/"+view.ID, a.Token, map[string]string{"status": status})
	}
	assert.Equal(t, http.StatusForbidden, resolve(alice, "accepted").Code)
	assert.Equal(t, http.StatusBadRequest, resolve(bob, "pending").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/friend-requests/missing", bob.Token, map[string]string{"status": "accepted"}).Code)

	rr = resolve(bob, "accepted")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, models.StatusAccepted, decode[models.FriendRequestView](t, rr).Status)
	assert.Equal(t, http.StatusConflict, resolve(bob, "rejected").Code)

	for _, a := range []account{alice, bob} {
		rr = s.do(http.MethodGet, "/friend-requests/accepted", a.Token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[[]models.PublicUser](t, rr), 1)
	}
	rr = s.do(http.MethodGet, "/friend-requests/accepted", carol.Token, nil)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = s.do(http.MethodGet, "/users/"+bob.ID+"/friendship", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"user_id":%q,"is_friend":true}`, bob.ID), rr.Body.String())

	rr = s.do(http.MethodGet, "/friend-requests/pending", bob.Token, nil)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestSendFriendRequest_InvalidPayload(t *testing.T) {
	s := newTestServer(t, 0, 1)
	alice := s.signup("alice@example.com", "Alice")

	req := httptest.NewRequest(http.MethodPost, "/friend-requests", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+alice.Token)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/friend-requests", alice.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendFriendRequest_Throttled(t *testing.T) {
	s := newTestServer(t, 1, 2)
	alice := s.signup("alice@example.com", "Alice")
	bob := s.signup("bob@example.com", "Bob")
	carol := s.signup("carol@example.com", "Carol")
	dave := s.signup("dave@example.com", "Dave")

	s.sendRequest(alice, bob.ID)
	s.sendRequest(alice, carol.ID)

	rr := s.do(http.MethodPost, "/friend-requests", alice.Token, map[string]string{"to_user": dave.ID})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rr.Body.String())

	// Other endpoints and other senders are not throttled.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/friend-requests/pending", alice.Token, nil).Code)
	s.sendRequest(dave, alice.ID)
}

func TestConcurrentResolveOverHTTP(t *testing.T) {
	s := newTestServer(t, 0, 1)
	alice := s.signup("alice@example.com", "Alice")
	bob := s.signup("bob@example.com", "Bob")
	view := s.sendRequest(alice, bob.ID)

	const n = 10
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := "accepted"
			if i%2 == 1 {
				decision = "rejected"
			}
			codes[i] = s.do(http.MethodPatch, "/friend-requests/"+view.ID, bob.Token, map[string]string{"status": decision}).Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, 0, 1)
	req := httptest.NewRequest(http.MethodOptions, "/friend-requests", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventsWebSocket(t *testing.T) {
	s := newTestServer(t, 0, 1)
	alice := s.signup("alice@example.com", "Alice")
	bob := s.signup("bob@example.com", "Bob")

	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+bob.Token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return s.hub.Connections(bob.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	view := s.sendRequest(alice, bob.ID)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type    string                   `json:"type"`
		Payload models.FriendRequestView `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, hub.EventFriendRequestCreated, event.Type)
	assert.Equal(t, view.ID, event.Payload.ID)
	assert.Equal(t, alice.ID, event.Payload.FromUser.ID)
}
