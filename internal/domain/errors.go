package domain

import "errors"

var (
	// ErrUserNotFound is returned by read paths addressing an unknown user.
	// Callers decide whether absence is an error or the start of onboarding.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoUnseenProblems signals an empty selection set for a user/difficulty
	// combination. The scheduler logs and skips; it never crashes on this.
	ErrNoUnseenProblems = errors.New("no unseen problems available")
)

// ValidationError marks user input that violates a precondition. It carries the
// corrective prompt to send back; stored state is left unchanged.
type ValidationError struct {
	Prompt string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Prompt
}

// Code identifies the error class in handler summary logs.
func (e *ValidationError) Code() string {
	return "VALIDATION"
}

// Validationf builds a ValidationError with the given user-facing prompt.
func Validationf(prompt string) *ValidationError {
	return &ValidationError{Prompt: prompt}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
