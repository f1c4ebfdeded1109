package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request rejected before any upstream call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRecipeNotFound is returned when a recipe id is not in the index.
	ErrRecipeNotFound = errors.New("recipe not found")
)

// Upstream service names carried by UpstreamError.
const (
	ServiceVision      = "vision"
	ServiceChat        = "chat"
	ServiceEmbedding   = "embedding"
	ServiceVectorStore = "vector_store"
	ServiceThreadStore = "thread_store"
)

// InputError is a client mistake with a message safe to show to the caller.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrInvalidInput) hold for every InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(msg string) error {
	return &InputError{Message: msg}
}

// UpstreamError reports a failure of an external collaborator.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstream wraps err as an UpstreamError unless it already is one or is a
// domain error that must keep its meaning.
func upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) || errors.Is(err, ErrRecipeNotFound) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	return &UpstreamError{Service: service, Err: err}
}
