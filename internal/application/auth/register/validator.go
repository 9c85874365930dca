package register

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

// The email and display name are checked trimmed; the password keeps its
// spaces for length but may not be blank.
type input struct {
	Email       string `json:"email" validate:"required,max=255,email"`
	Password    string `json:"password" validate:"required,notblank,min=8,max=100"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=100"`
}

type Validator struct {
	v *validator.Validate
}

func NewValidator(v *validator.Validate) *Validator {
	return &Validator{v: v}
}

func (val *Validator) Validate(cmd Command) []result.Error {
	return validation.ToResultErrors(val.v.Struct(input{
		Email:       strings.TrimSpace(cmd.Email),
		Password:    cmd.Password,
		DisplayName: strings.TrimSpace(cmd.DisplayName),
	}))
}
