package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joestump/recipe-manager/internal/client"
)

// RecipeForm holds the raw form input for creating or editing a recipe.
// PrepTime stays a string so whatever the user typed survives a re-render.
// The json tags name the keys of the error map and match the API's field
// names, so server messages land on the same inputs.
type RecipeForm struct {
	Name         string `json:"name"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	PrepTime     string `json:"prepTime"`
}

var errPrepTime = validation.NewError("validation_prep_time", "Prep time must be greater than 0")

func formFromRequest(r *http.Request) RecipeForm {
	return RecipeForm{
		Name:         r.PostFormValue("name"),
		Ingredients:  r.PostFormValue("ingredients"),
		Instructions: r.PostFormValue("instructions"),
		PrepTime:     r.PostFormValue("prepTime"),
	}
}

func formFromRecipe(rec *client.Recipe) RecipeForm {
	return RecipeForm{
		Name:         rec.Name,
		Ingredients:  rec.Ingredients,
		Instructions: rec.Instructions,
		PrepTime:     strconv.Itoa(rec.PrepTime),
	}
}

// Validate checks the form before anything is sent to the API. Blank and
// whitespace-only text fields count as missing.
func (f RecipeForm) Validate() error {
	t := RecipeForm{
		Name:         strings.TrimSpace(f.Name),
		Ingredients:  strings.TrimSpace(f.Ingredients),
		Instructions: strings.TrimSpace(f.Instructions),
		PrepTime:     strings.TrimSpace(f.PrepTime),
	}
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required.Error("Recipe name is required")),
		validation.Field(&t.Ingredients, validation.Required.Error("Ingredients are required")),
		validation.Field(&t.Instructions, validation.Required.Error("Instructions are required")),
		validation.Field(&t.PrepTime, validation.By(positiveMinutes)),
	)
}

func positiveMinutes(value any) error {
	s, _ := value.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errPrepTime
	}
	return nil
}

// Recipe converts a validated form into the API shape.
func (f RecipeForm) Recipe() client.Recipe {
	n, _ := strconv.Atoi(strings.TrimSpace(f.PrepTime))
	return client.Recipe{
		Name:         f.Name,
		Ingredients:  f.Ingredients,
		Instructions: f.Instructions,
		PrepTime:     n,
	}
}

// fieldErrors flattens ozzo's validation.Errors into field -> message.
func fieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, e := range verrs {
		out[field] = e.Error()
	}
	return out
}
