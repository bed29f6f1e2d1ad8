package api

import "github.com/joestump/recipe-manager/internal/store"

// Recipe is the JSON representation of a recipe. ID is optional on create
// and ignored there; on update it must equal the path id. Responses always
// carry it.
type Recipe struct {
	ID           *int64 `json:"id,omitempty" example:"4"`
	Name         string `json:"name" example:"Tea"`
	Ingredients  string `json:"ingredients" example:"water, tea leaves"`
	Instructions string `json:"instructions" example:"Boil, steep."`
	PrepTime     int    `json:"prepTime" example:"5"`
}

func toRecipe(r *store.Recipe) Recipe {
	id := r.ID
	return Recipe{
		ID:           &id,
		Name:         r.Name,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		PrepTime:     r.PrepTime,
	}
}

// record converts the request body into a store record. The body id is
// dropped; callers decide which id applies.
func (r Recipe) record() *store.Recipe {
	return &store.Recipe{
		Name:         r.Name,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		PrepTime:     r.PrepTime,
	}
}
