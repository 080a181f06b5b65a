package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSearchAndAdd(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "search and add food", err)
		return
	}

	user := userFrom(r.Context())
	food, tracker, err := s.foods.SearchAndAdd(r.Context(), user.ID, services.SearchInput{
		Name:       req.Name,
		ExactMatch: req.ExactMatch,
		DataType:   req.DataType,
	})
	if err != nil {
		s.writeError(w, r, "search and add food", err)
		return
	}

	writeJSON(w, http.StatusCreated, searchAndAddResponse{
		Food:    toFoodResponse(food),
		Tracker: toTrackerResponse(tracker),
	})
}

func (s *Server) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create food", err)
		return
	}

	food, err := s.foods.Add(r.Context(), userFrom(r.Context()).ID, services.FoodInput{
		Name: req.Name,
		Nutrients: models.Nutrients{
			Calories: req.Calories,
			Carbs:    req.Carbs,
			Fats:     req.Fats,
			Proteins: req.Proteins,
			VitaminC: req.VitaminC,
			Calcium:  req.Calcium,
		},
	})
	if err != nil {
		s.writeError(w, r, "create food", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFoodResponse(food))
}

func (s *Server) handleListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := s.foods.List(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, "list foods", err)
		return
	}
	writeJSON(w, http.StatusOK, toFoodResponses(foods))
}

func (s *Server) handleGetFood(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, "get food", fmt.Errorf("%w: food id %q", common.ErrorNotFound, chi.URLParam(r, "id")))
		return
	}

	food, err := s.foods.Get(r.Context(), userFrom(r.Context()).ID, id)
	if err != nil {
		s.writeError(w, r, "get food", err)
		return
	}
	writeJSON(w, http.StatusOK, toFoodResponse(food))
}
