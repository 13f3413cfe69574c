package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// FailureKind classifies command failures
type FailureKind int

const (
	PermissionDenied FailureKind = iota + 1
	BotPermissionInsufficient
	TargetNotModifiable
	TargetNotFound
	InvalidInput
	ExternalServiceFailure
	ConfigIOFailure
)

var failureKindNames = map[FailureKind]string{
	PermissionDenied:          "PermissionDenied",
	BotPermissionInsufficient: "BotPermissionInsufficient",
	TargetNotModifiable:       "TargetNotModifiable",
	TargetNotFound:            "TargetNotFound",
	InvalidInput:              "InvalidInput",
	ExternalServiceFailure:    "ExternalServiceFailure",
	ConfigIOFailure:           "ConfigIOFailure",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Failure is the error type returned by commands. Message is safe to show to
// the invoking user, Err is only logged.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Kind.String() + ": " + f.Message + ": " + f.Err.Error()
	}
	return f.Kind.String() + ": " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure creates a Failure without an underlying error
func NewFailure(kind FailureKind, format string, args ...interface{}) error {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapFailure attaches kind and a user facing message to err, with a stack
func WrapFailure(err error, kind FailureKind, message string) error {
	if err == nil {
		return nil
	}
	return &Failure{Kind: kind, Message: message, Err: errors.WithStack(err)}
}

// KindOf classifies err. Errors that are not failures count as
// ExternalServiceFailure.
func KindOf(err error) FailureKind {
	if failure, ok := AsFailure(err); ok {
		return failure.Kind
	}
	return ExternalServiceFailure
}

// AsFailure finds the Failure at the root of err's cause chain
func AsFailure(err error) (*Failure, bool) {
	if err == nil {
		return nil, false
	}
	failure, ok := errors.Cause(err).(*Failure)
	return failure, ok
}
