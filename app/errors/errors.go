package errors

type WithCause interface{ Cause() error }

type WithHint interface{ Hint() string }

// Runtime is an error meant to be shown to the user, with an optional cause
// and a hint on how to fix it.
type Runtime struct {
	msg   string
	cause error
	hint  string
}

func NewRuntimeError(msg string, cause error, hint string) Runtime {
	return Runtime{msg: msg, cause: cause, hint: hint}
}

func (e Runtime) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e Runtime) Cause() error {
	return e.cause
}

func (e Runtime) Unwrap() error {
	return e.cause
}

func (e Runtime) Hint() string {
	return e.hint
}
