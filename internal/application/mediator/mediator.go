// Package mediator routes commands to their validator and handler.
//
// Bindings are registered once at startup on a Registry and frozen into a
// Dispatcher, which is read-only and safe for concurrent use.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/domain/result"
)

// ErrDuplicateHandler is returned by Register when a command type already has a binding.
var ErrDuplicateHandler = errors.New("mediator: handler already registered")

// HandlerNotRegistered is returned by Send for a command without a binding.
var HandlerNotRegistered = result.NewError("internal.handler_not_registered", "An unexpected error occurred.")

// Command is an immutable request for a state change.
// CommandType must not depend on field values; it is called on the zero value.
type Command interface {
	CommandType() string
}

// Validator checks a command before its handler runs. It must be free of I/O.
type Validator[C Command] interface {
	Validate(cmd C) []result.Error
}

// Handler executes a validated command.
// The error return is reserved for context cancellation.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (result.Result[R], error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc[C Command] func(cmd C) []result.Error

func (f ValidatorFunc[C]) Validate(cmd C) []result.Error { return f(cmd) }

// HandlerFunc adapts a function to Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (result.Result[R], error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (result.Result[R], error) {
	return f(ctx, cmd)
}

type binding[C Command, R any] struct {
	validator Validator[C]
	handler   Handler[C, R]
}

type Registry struct {
	bindings map[string]any
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]any)}
}

// Register binds a validator and handler to the command type of C.
// A nil validator accepts every command.
func Register[C Command, R any](reg *Registry, v Validator[C], h Handler[C, R]) error {
	if h == nil {
		return fmt.Errorf("mediator: nil handler")
	}
	var zero C
	key := zero.CommandType()
	if _, exists := reg.bindings[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, key)
	}
	reg.bindings[key] = binding[C, R]{validator: v, handler: h}
	return nil
}

// MustRegister is Register for wiring code; it panics on error.
func MustRegister[C Command, R any](reg *Registry, v Validator[C], h Handler[C, R]) {
	if err := Register(reg, v, h); err != nil {
		panic(err)
	}
}

type Dispatcher struct {
	bindings map[string]any
	logger   logrus.FieldLogger
}

// New freezes the registry's bindings. Later changes to reg are not seen.
func New(reg *Registry, logger logrus.FieldLogger) *Dispatcher {
	b := make(map[string]any, len(reg.bindings))
	for k, v := range reg.bindings {
		b[k] = v
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Dispatcher{bindings: b, logger: logger}
}

// Types lists the registered command types.
func (d *Dispatcher) Types() []string {
	out := make([]string, 0, len(d.bindings))
	for k := range d.bindings {
		out = append(out, k)
	}
	return out
}

// Send validates cmd and, when it is valid, runs its handler.
// Validation failures are returned without invoking the handler. The handler's
// Result is returned unchanged.
func Send[C Command, R any](ctx context.Context, d *Dispatcher, cmd C) (result.Result[R], error) {
	start := time.Now()
	typ := cmd.CommandType()
	log := d.logger.WithField("command", typ)

	b, ok := d.bindings[typ].(binding[C, R])
	if !ok {
		log.Error("no handler registered for command")
		return result.Failure[R](HandlerNotRegistered), nil
	}

	if b.validator != nil {
		if errs := b.validator.Validate(cmd); len(errs) > 0 {
			log.WithFields(logrus.Fields{
				"outcome":  errs[0].Code,
				"errors":   len(errs),
				"duration": time.Since(start),
			}).Debug("command rejected")
			return result.Failure[R](errs...), nil
		}
	}

	if err := ctx.Err(); err != nil {
		return result.Result[R]{}, err
	}

	res, err := b.handler.Handle(ctx, cmd)
	log = log.WithField("duration", time.Since(start))
	switch {
	case err != nil:
		log.WithError(err).Warn("command aborted")
	case res.IsFailure():
		log.WithField("outcome", res.Err().Code).Info("command failed")
	default:
		log.WithField("outcome", "ok").Debug("command handled")
	}
	return res, err
}
