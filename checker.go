package multikey

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValueChecker decides whether a value has the shape a store accepts.
type ValueChecker interface {
	Check(v any) bool
}

// CheckerFunc adapts a predicate to ValueChecker.
type CheckerFunc func(v any) bool

// Check implements ValueChecker.
func (f CheckerFunc) Check(v any) bool { return f(v) }

// validatingChecker is implemented by checkers that can explain a rejection.
type validatingChecker interface {
	Validate(v any) error
}

// StructChecker validates struct values against their `validate` tags using
// go-playground/validator. Pointers to structs are accepted; any other value
// is rejected.
type StructChecker struct {
	validate *validator.Validate
}

// NewStructChecker creates a StructChecker. custom maps tag names to extra
// validation functions and may be nil.
func NewStructChecker(custom map[string]validator.Func) (*StructChecker, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register validation %q: %w", tag, err)
		}
	}
	return &StructChecker{validate: v}, nil
}

// Check implements ValueChecker.
func (c *StructChecker) Check(v any) bool {
	return c.Validate(v) == nil
}

// Validate returns the validation failure for v, if any.
func (c *StructChecker) Validate(v any) error {
	return c.validate.Struct(v)
}

func checkValue(c ValueChecker, op string, v any) error {
	if c == nil {
		return nil
	}
	if vc, ok := c.(validatingChecker); ok {
		if err := vc.Validate(v); err != nil {
			return fmt.Errorf("multikey: %s: %w: %w", op, ErrValueRejected, err)
		}
		return nil
	}
	if !c.Check(v) {
		return fmt.Errorf("multikey: %s: %w", op, ErrValueRejected)
	}
	return nil
}
