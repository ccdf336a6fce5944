package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  *validator.Validate
	sanitizer = bluemonday.StrictPolicy()
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	maxPasswordLength = 128
	minPasswordLength = 8
	maxEmailLength    = 254
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// Check valida s e traduz as falhas em mensagens por campo.
func Check(s any) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	err := validate.Struct(s)
	if err == nil {
		return result
	}

	result.Valid = false
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Errors = append(result.Errors, ValidationError{Field: "", Message: err.Error()})
		return result
	}

	for _, fe := range verrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return result
}

func fieldPath(fe validator.FieldError) string {
	// "CreateRecordRequest.embedding[2]" -> "embedding[2]"
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "invalid email format"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "finite":
		return "must be a finite number"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email too long (max %d characters)", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password too long (max %d characters)", maxPasswordLength)
	}
	return nil
}

func ValidateRegistration(email, password string) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	if err := ValidateEmail(email); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Field: "email", Message: err.Error()})
	}

	if err := ValidatePassword(password); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Field: "password", Message: err.Error()})
	}

	return result
}

// ValidateEmbedding exige um vetor não vazio, finito, não nulo e, quando dim > 0, de tamanho dim.
func ValidateEmbedding(embedding []float64, dim int) error {
	if len(embedding) == 0 {
		return fmt.Errorf("embedding must not be empty")
	}
	if dim > 0 && len(embedding) != dim {
		return fmt.Errorf("embedding has dimension %d, expected %d", len(embedding), dim)
	}
	nonzero := false
	for i, x := range embedding {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("embedding[%d] is not a finite number", i)
		}
		if x != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		return fmt.Errorf("embedding must have a nonzero component")
	}
	return nil
}

// SanitizeText remove qualquer HTML do texto do usuário.
func SanitizeText(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}
