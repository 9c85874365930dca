package mediator_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
)

type greet struct{ Name string }

func (greet) CommandType() string { return "test.greet" }

type unbound struct{}

func (unbound) CommandType() string { return "test.unbound" }

var nameRequired = mediator.ValidatorFunc[greet](func(c greet) []result.Error {
	if c.Name == "" {
		return []result.Error{result.FieldError("name", "validation.name.required", "name is required")}
	}
	return nil
})

func greeter(calls *atomic.Int32) mediator.HandlerFunc[greet, string] {
	return func(_ context.Context, c greet) (result.Result[string], error) {
		calls.Add(1)
		if c.Name == "nobody" {
			return result.Failure[string](result.NewError("greet.unknown", "unknown")), nil
		}
		return result.Success("hello " + c.Name), nil
	}
}

func newDispatcher(t *testing.T, calls *atomic.Int32) *mediator.Dispatcher {
	t.Helper()
	reg := mediator.NewRegistry()
	require.NoError(t, mediator.Register[greet, string](reg, nameRequired, greeter(calls)))
	return mediator.New(reg, nil)
}

func Test_Send_ValidCommand_ReturnsHandlerResult(t *testing.T) {
	// arrange
	var calls atomic.Int32
	d := newDispatcher(t, &calls)

	// act
	res, err := mediator.Send[greet, string](context.Background(), d, greet{Name: "ana"})

	// assert
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "hello ana", res.Value())
	assert.EqualValues(t, 1, calls.Load())
}

func Test_Send_HandlerFailure_IsReturnedUnchanged(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, &calls)

	res, err := mediator.Send[greet, string](context.Background(), d, greet{Name: "nobody"})

	require.NoError(t, err)
	assert.Equal(t, "greet.unknown", res.Err().Code)
}

func Test_Send_InvalidCommand_ShortCircuits(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, &calls)

	res, err := mediator.Send[greet, string](context.Background(), d, greet{})

	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.Equal(t, "validation.name.required", res.Err().Code)
	assert.Zero(t, calls.Load(), "handler must not run on invalid input")
}

func Test_Send_NilValidator_AcceptsEverything(t *testing.T) {
	var calls atomic.Int32
	reg := mediator.NewRegistry()
	require.NoError(t, mediator.Register[greet, string](reg, nil, greeter(&calls)))
	d := mediator.New(reg, nil)

	res, err := mediator.Send[greet, string](context.Background(), d, greet{})

	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
}

func Test_Register_DuplicateCommandType_Fails(t *testing.T) {
	var calls atomic.Int32
	reg := mediator.NewRegistry()
	require.NoError(t, mediator.Register[greet, string](reg, nameRequired, greeter(&calls)))

	err := mediator.Register[greet, string](reg, nil, greeter(&calls))

	assert.ErrorIs(t, err, mediator.ErrDuplicateHandler)
	assert.Panics(t, func() { mediator.MustRegister[greet, string](reg, nil, greeter(&calls)) })
}

func Test_Send_UnboundCommand_ReturnsHandlerNotRegistered(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, &calls)

	res, err := mediator.Send[unbound, string](context.Background(), d, unbound{})

	require.NoError(t, err)
	assert.Equal(t, mediator.HandlerNotRegistered, res.Err())
}

func Test_Send_MismatchedResponseType_ReturnsHandlerNotRegistered(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, &calls)

	res, err := mediator.Send[greet, int](context.Background(), d, greet{Name: "ana"})

	require.NoError(t, err)
	assert.Equal(t, mediator.HandlerNotRegistered, res.Err())
	assert.Zero(t, calls.Load())
}

func Test_Send_CancelledContext_PropagatesWithoutHandling(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, &calls)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mediator.Send[greet, string](ctx, d, greet{Name: "ana"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func Test_New_FreezesBindings(t *testing.T) {
	var calls atomic.Int32
	reg := mediator.NewRegistry()
	d := mediator.New(reg, nil)
	require.NoError(t, mediator.Register[greet, string](reg, nil, greeter(&calls)))

	res, err := mediator.Send[greet, string](context.Background(), d, greet{Name: "ana"})

	require.NoError(t, err)
	assert.Equal(t, mediator.HandlerNotRegistered, res.Err())
	assert.Empty(t, d.Types())
}

func Test_Send_ConcurrentUse(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, &calls)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := mediator.Send[greet, string](context.Background(), d, greet{Name: "ana"})
			assert.NoError(t, err)
			assert.True(t, res.IsSuccess())
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50, calls.Load())
}
