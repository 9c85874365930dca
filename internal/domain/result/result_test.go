package result_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/taskflow-auth/internal/domain/result"
)

func Test_Success_HoldsValue(t *testing.T) {
	r := result.Success(42)

	assert.True(t, r.IsSuccess())
	assert.False(t, r.IsFailure())
	assert.Equal(t, 42, r.Value())
	assert.Panics(t, func() { r.Err() }, "Err on a success is a programming error")
	assert.Panics(t, func() { r.Errors() })
}

func Test_Failure_HoldsErrors(t *testing.T) {
	first := result.FieldError("email", "validation.email.required", "email is required")
	second := result.FieldError("password", "validation.password.min_length", "password must be at least 8 characters long")

	r := result.Failure[int](first, second)

	assert.True(t, r.IsFailure())
	assert.Equal(t, first, r.Err())
	assert.Equal(t, []result.Error{first, second}, r.Errors())
	assert.Panics(t, func() { r.Value() }, "Value on a failure is a programming error")
}

func Test_Failure_WithoutErrors_Panics(t *testing.T) {
	assert.Panics(t, func() { result.Failure[string]() })
}

func Test_ZeroResult_PanicsWithMessage(t *testing.T) {
	var r result.Result[string]

	assert.True(t, r.IsFailure())
	const msg = "result: zero Result; build it with Success or Failure"
	assert.PanicsWithValue(t, msg, func() { r.Err() })
	assert.PanicsWithValue(t, msg, func() { r.Errors() })
	assert.PanicsWithValue(t, msg, func() { r.Value() })
}

func Test_Failure_ErrorsAreCopied(t *testing.T) {
	errs := []result.Error{result.NewError("a.b", "first")}
	r := result.Failure[int](errs...)

	errs[0] = result.NewError("c.d", "mutated")
	got := r.Errors()
	got[0] = result.NewError("e.f", "mutated again")

	assert.Equal(t, "a.b", r.Err().Code)
}

func Test_Error_EqualityByValue(t *testing.T) {
	a := result.NewError("auth.email_already_in_use", "An account with this email already exists.")
	b := result.NewError("auth.email_already_in_use", "An account with this email already exists.")

	assert.True(t, a == b)
	assert.NotEqual(t, a, result.InternalError)
}

func Test_Recast_KeepsErrors(t *testing.T) {
	src := result.Failure[int](result.InternalError)

	dst := result.Recast[string](src)

	assert.True(t, dst.IsFailure())
	assert.Equal(t, result.InternalError, dst.Err())
}

func Test_Error_String(t *testing.T) {
	assert.Equal(t, "internal.unexpected: An unexpected error occurred.", result.InternalError.String())
	assert.Equal(t, "validation.email.required (email): email is required",
		result.FieldError("email", "validation.email.required", "email is required").String())
}
