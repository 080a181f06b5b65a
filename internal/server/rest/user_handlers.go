package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, "list users", err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create user", err)
		return
	}

	user, err := s.users.Register(r.Context(), req.input(req.Scope))
	if err != nil {
		s.writeError(w, r, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r.Context(), id) {
		s.writeError(w, r, "get user", common.ErrorForbidden)
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r.Context(), id) {
		s.writeError(w, r, "update user", common.ErrorForbidden)
		return
	}

	var req userUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "update user", err)
		return
	}

	user, err := s.users.Update(r.Context(), id, models.UserUpdate{
		UserName:    req.UserName,
		Name:        req.Name,
		Weight:      req.Weight,
		Height:      req.Height,
		Age:         req.Age,
		FitnessGoal: req.FitnessGoal,
	})
	if err != nil {
		s.writeError(w, r, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "set active", err)
		return
	}
	if req.IsActive == nil {
		s.writeError(w, r, "set active", fmt.Errorf("%w: is_active is required", common.ErrorValidation))
		return
	}

	user, err := s.users.SetActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		s.writeError(w, r, "set active", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
