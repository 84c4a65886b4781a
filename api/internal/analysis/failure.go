package analysis

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	KindValidation    FailureKind = "validation"
	KindProvider      FailureKind = "provider"
	KindEmptyResponse FailureKind = "empty_response"
)

const (
	MsgNoImage       = "No image uploaded"
	MsgEmptyResponse = "Empty response from Gemini API"
)

// ErrEmptyResponse is returned by gateways when the model produced no text.
var ErrEmptyResponse = errors.New(MsgEmptyResponse)

// Failure is the error type of Service.Analyze. Kind decides how callers
// report it; Message is what the client sees.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil && f.Err.Error() != f.Message {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func Validation(msg string) *Failure {
	return &Failure{Kind: KindValidation, Message: msg}
}

// AsFailure classifies any error. Errors that are not a *Failure are treated
// as provider failures carrying their own message.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, ErrEmptyResponse) {
		return &Failure{Kind: KindEmptyResponse, Message: MsgEmptyResponse, Err: err}
	}
	return &Failure{Kind: KindProvider, Message: err.Error(), Err: err}
}
