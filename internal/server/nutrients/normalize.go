package nutrients

import (
	"strings"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

const kilojoulesPerKilocalorie = 4.184

// FoodNutrient is one nutrient row of a FoodData Central food.
type FoodNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// Normalize maps USDA nutrient rows onto models.Nutrients. Names are matched
// case-insensitively, energy in kJ is converted to kcal unless a kcal row is
// also present, and anything missing stays 0.
func Normalize(rows []FoodNutrient) models.Nutrients {
	var n models.Nutrients
	var haveKcal bool

	for _, r := range rows {
		switch strings.ToLower(strings.TrimSpace(r.NutrientName)) {
		case "energy":
			switch strings.ToLower(strings.TrimSpace(r.UnitName)) {
			case "kj":
				if !haveKcal {
					n.Calories = r.Value / kilojoulesPerKilocalorie
				}
			default:
				n.Calories = r.Value
				haveKcal = true
			}
		case "protein":
			n.Proteins = r.Value
		case "carbohydrate, by difference":
			n.Carbs = r.Value
		case "total lipid (fat)":
			n.Fats = r.Value
		case "vitamin c, total ascorbic acid":
			n.VitaminC = r.Value
		case "calcium, ca":
			n.Calcium = r.Value
		}
	}

	return n
}
