package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// validate is shared by all handlers. Field names in errors are taken from
// the json tags so that clients see the names they sent.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

// DecodeJSON decodes the request body into v. Unknown fields and trailing
// data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}

// DescribeValidationError turns a validator error into a short client-safe
// message naming the first failing field.
func DescribeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Invalid %s: required field", fe.Field())
	case "email":
		return fmt.Sprintf("Invalid %s: invalid email format", fe.Field())
	case "max":
		return fmt.Sprintf("Invalid %s: must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("Invalid %s: too short", fe.Field())
	case "datetime":
		return fmt.Sprintf("Invalid %s: expected format YYYY-MM-DD", fe.Field())
	case "uuid":
		return fmt.Sprintf("Invalid %s: must be a UUID", fe.Field())
	default:
		return fmt.Sprintf("Invalid %s", fe.Field())
	}
}
