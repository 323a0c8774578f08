package server

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ekagra-app/ekagra/internal/auth"
	"github.com/ekagra-app/ekagra/pkg/models"
)

// userResponse is the public view of a user.
type userResponse struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Preferences models.Preferences `json:"preferences"`
}

func publicUser(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Preferences: u.Preferences,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Please provide a valid email")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	existing, err := s.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		writeEngineError(w, err)
		return
	}

	token, err := s.auth.Mint(user.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"user":  publicUser(user),
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.FindByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.auth.Mint(user.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"user":  publicUser(user),
		"token": token,
	})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.FindByID(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"user": publicUser(user)})
}

type preferencesRequest struct {
	Preferences models.Preferences `json:"preferences"`
}

func (s *Service) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := req.Preferences
	if p.PomodoroMinutes <= 0 || p.ShortBreakMinutes <= 0 || p.LongBreakMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "preference durations must be positive")
		return
	}

	user, err := s.users.UpdatePreferences(r.Context(), ownerFromContext(r.Context()), p)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"user": publicUser(user)})
}
