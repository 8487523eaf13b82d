package nutrition

import (
	"errors"

	"diet-wizard/internal/diet"
	"diet-wizard/internal/wizard"
)

// Status is the state of a session's single diet fetch.
type Status int

const (
	StatusPending Status = iota
	StatusFailed
	StatusSucceeded
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	case StatusSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// Messages shown to the user for each outcome.
const (
	PendingMessage = "Estamos gerando sua dieta\nConsultando IA..."
	FailureMessage = "Falha ao gerar dieta!"
	RetryMessage   = "Tente novamente"
)

// Outcome drives the result view. Exactly one of Plan or Err is set once terminal.
type Outcome struct {
	Status Status
	Plan   *diet.Plan
	Err    error
}

// Pending is the outcome of a fetch that has not resolved yet.
func Pending() Outcome {
	return Outcome{Status: StatusPending}
}

// Failed wraps any fetch-time error.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

// Succeeded wraps a decoded diet.
func Succeeded(plan *diet.Plan) Outcome {
	return Outcome{Status: StatusSucceeded, Plan: plan}
}

// Terminal reports whether the outcome will no longer change.
func (o Outcome) Terminal() bool {
	return o.Status != StatusPending
}

// Reason is the user-visible failure text. Every error kind collapses into the
// same message; the underlying error stays in Err for logs.
func (o Outcome) Reason() string {
	if o.Status != StatusFailed {
		return ""
	}
	return FailureMessage
}

// ErrorKind classifies a failed outcome for metrics: incomplete_profile,
// transport, malformed, discarded or other. It is empty for non-failed outcomes.
func (o Outcome) ErrorKind() string {
	if o.Status != StatusFailed {
		return ""
	}
	var (
		incomplete *wizard.IncompleteProfileError
		transport  *diet.TransportError
		malformed  *diet.MalformedResponseError
	)
	switch {
	case errors.As(o.Err, &incomplete):
		return "incomplete_profile"
	case errors.As(o.Err, &transport):
		return "transport"
	case errors.As(o.Err, &malformed):
		return "malformed"
	case errors.Is(o.Err, ErrUnknownSession):
		return "discarded"
	}
	return "other"
}
