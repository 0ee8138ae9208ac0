package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"todo/internal/service"
)

// RecordedRequest is what the fake server saw of a request.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          string
}

// Server exposes a FakeService over HTTP with the real service's routes,
// mounted under /api.
type Server struct {
	*httptest.Server
	Fake *FakeService

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewServer starts a Server backed by fake and closes it when the test ends.
func NewServer(t *testing.T, fake *FakeService) *Server {
	t.Helper()
	s := &Server{Fake: fake}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Requests returns the requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})
		// Task routes match only with the trailing slash, like the real service.
		r.Get("/tasks/", s.handleList)
		r.Post("/tasks/", s.handleCreate)
		r.Put("/tasks/{id}/", s.handleUpdate)
		r.Patch("/tasks/{id}/", s.handleUpdate)
		r.Delete("/tasks/{id}/", s.handleDelete)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body strings.Builder
		if r.Body != nil {
			data, _ := readAll(r)
			body.Write(data)
		}
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body.String(),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	s.Fake.count("Register")
	if s.Fake.RegisterErr != nil {
		writeError(w, s.Fake.RegisterErr)
		return
	}
	res, err := s.Fake.register(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.Fake.count("Login")
	if s.Fake.LoginErr != nil {
		writeError(w, s.Fake.LoginErr)
		return
	}
	res, err := s.Fake.login(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Fake.count("Logout")
	if s.Fake.LogoutErr != nil {
		writeError(w, s.Fake.LogoutErr)
		return
	}
	if err := s.Fake.logout(bearer(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.Fake.count("Me")
	if s.Fake.MeErr != nil {
		writeError(w, s.Fake.MeErr)
		return
	}
	u, err := s.Fake.me(bearer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.Fake.count("ListTasks")
	if s.Fake.ListHook != nil {
		s.Fake.ListHook(r.Context())
	}
	if s.Fake.ListErr != nil {
		writeError(w, s.Fake.ListErr)
		return
	}
	tasks, err := s.Fake.list(bearer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var fields service.TaskFields
	if !decode(w, r, &fields) {
		return
	}
	s.Fake.count("CreateTask")
	if s.Fake.CreateErr != nil {
		writeError(w, s.Fake.CreateErr)
		return
	}
	task, err := s.Fake.create(bearer(r), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var fields service.TaskFields
	if !decode(w, r, &fields) {
		return
	}
	s.Fake.count("UpdateTask")
	if s.Fake.UpdateErr != nil {
		writeError(w, s.Fake.UpdateErr)
		return
	}
	task, err := s.Fake.update(bearer(r), id, fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	s.Fake.count("DeleteTask")
	if s.Fake.DeleteErr != nil {
		writeError(w, s.Fake.DeleteErr)
		return
	}
	if err := s.Fake.delete(bearer(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bearer returns the credential from "Authorization: <scheme> <token>".
func bearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": NotFoundMsg})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := readAll(r)
	if err == nil {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *service.APIError
	if !errors.As(err, &apiErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	body := make(map[string]any)
	if apiErr.Detail != "" {
		body["detail"] = apiErr.Detail
	}
	for k, v := range apiErr.Fields {
		body[k] = v
	}
	writeJSON(w, apiErr.StatusCode, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readAll reads the request body and leaves a fresh reader in its place.
func readAll(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, err
}
