package validate

import "fmt"

// Result is the outcome of validating one entity.
//
// Errors accumulates every problem found; validators never stop at the
// first failure, so a caller can surface all field-level messages at once.
// Sanitized is meaningful only when Valid is true.
type Result[T any] struct {
	Valid     bool
	Errors    []string
	Sanitized T
}

// checker accumulates error messages during validation.
type checker struct {
	errs []string
}

// addError appends a formatted error message.
func (c *checker) addError(format string, args ...any) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

// result assembles a Result from the accumulated errors and the sanitized
// value. Errors is never nil.
func result[T any](c *checker, sanitized T) Result[T] {
	errs := c.errs
	if errs == nil {
		errs = []string{}
	}
	return Result[T]{
		Valid:     len(errs) == 0,
		Errors:    errs,
		Sanitized: sanitized,
	}
}
