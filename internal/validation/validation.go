package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var bucketNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Tell the validator to use the JSON tag as the “field name”
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// Grab the value of `json:"foo,omitempty"`
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			// fallback to the Go field name or skip
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("bucketname", func(fl validator.FieldLevel) bool {
		return IsBucketName(fl.Field().String())
	})
	_ = validate.RegisterValidation("objectpath", func(fl validator.FieldLevel) bool {
		return IsObjectPath(fl.Field().String())
	})
}

// IsBucketName follows the S3 bucket naming rules.
func IsBucketName(s string) bool {
	return bucketNameRe.MatchString(s) && !strings.Contains(s, "..")
}

// IsObjectPath accepts relative object keys naming a file.
func IsObjectPath(s string) bool {
	if s == "" || strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return false
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ErrorsToJson(validationErrs error) (string, error) {
	var vErrs validator.ValidationErrors
	if !errors.As(validationErrs, &vErrs) {
		return "", validationErrs
	}

	errsMap := make(map[string]string)
	for _, fieldErr := range vErrs {
		errsMap[fieldErr.Field()] = fieldErr.Tag()
	}

	errsJson, err := json.Marshal(errsMap)
	if err != nil {
		return "", err
	}
	return string(errsJson), nil
}
