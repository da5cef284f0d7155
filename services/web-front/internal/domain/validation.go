package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError maps form fields to human-readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks v against its validate tags.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s is too long (max. %s)", name, fe.Param())
	case "min":
		if fe.Kind().String() == "int" {
			return fmt.Sprintf("%s must be at least %s", name, fe.Param())
		}
		return fmt.Sprintf("%s is too short (min. %s)", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, fe.Param())
	case "nefield":
		return name + " must differ from the current one"
	}
	return name + " is invalid"
}

// ValidateReviewForm normalises and validates a submission, including the image size limit.
func ValidateReviewForm(f *ReviewForm, maxImageBytes int64) error {
	f.Normalize()
	err := Validate(f)
	if f.Image == nil {
		return err
	}
	var msg string
	switch {
	case f.Image.ContentType != "" && !strings.HasPrefix(f.Image.ContentType, "image/"):
		msg = "only image files can be attached"
	case maxImageBytes > 0 && f.Image.Size > maxImageBytes:
		msg = fmt.Sprintf("image is too large (max. %d MB)", maxImageBytes/(1024*1024))
	default:
		return err
	}
	ve, ok := err.(*ValidationError)
	if !ok || ve == nil {
		ve = &ValidationError{Fields: map[string]string{}}
	}
	ve.Fields["Image"] = msg
	return ve
}

func ValidateCommentForm(f *CommentForm) error {
	f.Normalize()
	return Validate(f)
}
