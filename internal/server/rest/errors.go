package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps service errors to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "could not validate credentials"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "incorrect username or password"
	case errors.Is(err, common.ErrorInactiveUser):
		return http.StatusForbidden, "inactive user"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "not enough permissions"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrorUpstreamTimeout):
		return http.StatusGatewayTimeout, "nutrient database timed out"
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusServiceUnavailable, "nutrient database unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeError logs err with request context and writes the mapped response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)

	userID := ""
	if u := userFrom(r.Context()); u != nil {
		userID = u.ID
	}
	args := []any{
		"op", op,
		"status", status,
		"user_id", userID,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", args...)
	} else {
		s.logger.Info(r.Context(), "request rejected", args...)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorResponse{Detail: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into v. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(common.ErrorValidation, err)
	}
	return nil
}
