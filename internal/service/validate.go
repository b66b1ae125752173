package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError lists the offending fields, keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// check runs struct validation and converts the result into a *ValidationError.
func check(v interface{}) error {
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
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "datetime":
		return "Date has wrong format. Use YYYY-MM-DD."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fe.Value())
	case "url", "http_url":
		return "Enter a valid URL."
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}

// parse validates raw fields and turns them into a task ready for insertion.
func parse(f model.TaskFields) (model.Task, error) {
	if err := check(f); err != nil {
		return model.Task{}, err
	}

	due, err := model.ParseDate(f.DueDate)
	if err != nil {
		return model.Task{}, fieldError("due_date", "Date has wrong format. Use YYYY-MM-DD.")
	}

	return model.Task{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     due,
		Status:      model.Status(f.Status),
	}, nil
}
