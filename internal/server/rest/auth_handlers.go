package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/nutritracker/internal/common"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "register", err)
		return
	}

	user, err := s.users.Register(r.Context(), req.input(common.ScopeUser))
	if err != nil {
		s.writeError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// handleToken is the OAuth2 password grant: form fields username and
// password.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, "login", fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}
	userName, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if userName == "" || password == "" {
		s.writeError(w, r, "login", fmt.Errorf("%w: username and password are required", common.ErrorValidation))
		return
	}

	pair, err := s.users.Login(r.Context(), userName, password)
	if err != nil {
		s.writeError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "refresh", err)
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "logout", err)
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeError(w, r, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(userFrom(r.Context())))
}
