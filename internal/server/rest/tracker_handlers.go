package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleAddFood(w http.ResponseWriter, r *http.Request) {
	foodID, err := strconv.ParseInt(r.URL.Query().Get("food_id"), 10, 64)
	if err != nil {
		s.writeError(w, r, "add food to tracker", fmt.Errorf("%w: food_id must be an integer", common.ErrorValidation))
		return
	}

	tracker, err := s.trackers.AttributeFood(r.Context(), userFrom(r.Context()).ID, foodID)
	if err != nil {
		s.writeError(w, r, "add food to tracker", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackerResponse(tracker))
}

func (s *Server) handleTrackerToday(w http.ResponseWriter, r *http.Request) {
	tracker, err := s.trackers.Today(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, "tracker today", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackerResponse(tracker))
}

func (s *Server) handleFoodsToday(w http.ResponseWriter, r *http.Request) {
	foods, err := s.foods.ListToday(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, "foods today", err)
		return
	}
	writeJSON(w, http.StatusOK, toFoodResponses(foods))
}

func (s *Server) handleTrackerForDay(w http.ResponseWriter, r *http.Request) {
	day, err := models.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		s.writeError(w, r, "tracker for day", fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrorValidation))
		return
	}

	tracker, err := s.trackers.ForDay(r.Context(), userFrom(r.Context()).ID, day)
	if err != nil {
		s.writeError(w, r, "tracker for day", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackerResponse(tracker))
}
