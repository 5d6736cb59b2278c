package httpapi

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"school-inventory/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeValid reads the JSON body into out and runs struct validation,
// converting the first tag failure into a domain ValidationError.
func decodeValid(r *http.Request, out any) error {
	if err := readBodyJSON(r, 1<<20, out); err != nil {
		return domain.NewValidationError("body", "is not valid JSON")
	}
	if err := validate.Struct(out); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return domain.NewValidationError(fe.Field(), tagReason(fe))
		}
		return domain.NewValidationError("body", "is invalid")
	}
	return nil
}

func tagReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
