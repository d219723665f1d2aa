package allocation

import "fmt"

// ValidationError reports an allocation tree, asset or account that violates
// a structural rule, like class ratios that do not sum to one.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotValidatedError reports a query against an allocation tree that has not
// been successfully validated since its last mutation.
type NotValidatedError struct {
	Op string
}

func (e *NotValidatedError) Error() string {
	return fmt.Sprintf("%s: allocation tree is not validated", e.Op)
}

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Kind string // "asset", "account", "asset class", "checkpoint" or "ticker"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// AmbiguousMatchError reports a substring lookup that matched more than one
// entry when exactly one was expected.
type AmbiguousMatchError struct {
	Kind    string
	Name    string
	Matches []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s %q matches %d entries %v, pick one", e.Kind, e.Name, len(e.Matches), e.Matches)
}
