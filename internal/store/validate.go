package store

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationError lists the fields of a recipe that break the field rules,
// keyed by their JSON name (name, ingredients, instructions, prepTime).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid recipe: " + strings.Join(msgs, ", ")
}

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic("register notblank: " + err.Error())
	}

	eng := en.New()
	uni := ut.New(eng, eng)
	trans, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic("register translations: " + err.Error())
	}
	err := validate.RegisterTranslation("notblank", trans,
		func(ut ut.Translator) error {
			return ut.Add("notblank", "{0} is required", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("notblank", fe.Field())
			return msg
		},
	)
	if err != nil {
		panic("register notblank translation: " + err.Error())
	}
}

// ValidateRecipe checks r against the field rules: name, ingredients and
// instructions must be non-blank, name at most 100 characters, prep time
// between 1 and 1000 minutes. It returns a *ValidationError or nil.
func ValidateRecipe(r *Recipe) error {
	if r == nil {
		return &ValidationError{Fields: map[string]string{"recipe": "recipe is required"}}
	}
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate recipe: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(trans)
	}
	return &ValidationError{Fields: fields}
}
