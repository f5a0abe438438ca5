package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

var reportCategories = map[string]struct{}{
	"harassment":    {},
	"poor_lighting": {},
	"stray_dogs":    {},
	"other":         {},
}

func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("lat", validateLat)
	validate.RegisterValidation("lng", validateLng)
	validate.RegisterValidation("eta", validateETA)
	validate.RegisterValidation("phone", validatePhone)
	validate.RegisterValidation("category", validateCategory)
}

func validateLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90.0 && lat <= 90.0
}

func validateLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180.0 && lng <= 180.0
}

// a day is the longest trip we monitor
func validateETA(fl validator.FieldLevel) bool {
	eta := fl.Field().Int()
	return eta >= 1 && eta <= 1440
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}

func validateCategory(fl validator.FieldLevel) bool {
	_, ok := reportCategories[fl.Field().String()]
	return ok
}
