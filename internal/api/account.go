package api

import (
	"net/http"

	"github.com/rachamuffin/rachamuffin/internal/app/account"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type streakTypeRequest struct {
	Type   string `json:"type"`
	Custom string `json:"custom"`
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	var (
		u   account.User
		err error
	)
	s.locked(func() { u, err = s.svc.Accounts.Current() })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, http.StatusCreated, s.svc.Accounts.Register)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, http.StatusOK, s.svc.Accounts.Login)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, status int, fn func(username, password string) (account.User, error)) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		u   account.User
		err error
	)
	s.locked(func() { u, err = fn(req.Username, req.Password) })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, status, u.Profile())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var err error
	s.locked(func() { err = s.svc.Accounts.Logout() })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStreakType(w http.ResponseWriter, r *http.Request) {
	var req streakTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		u        account.User
		unlocked []domain.Achievement
		err      error
	)
	s.locked(func() { u, unlocked, err = s.svc.Accounts.SetStreakType(req.Type, req.Custom) })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": u.Profile(), "unlocked": orEmpty(unlocked)})
}
