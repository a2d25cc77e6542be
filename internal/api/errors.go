package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fracc/internal/core"
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer; Body holds the response text.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Message is the response text, or a generic line when the body was empty.
func (e *StatusError) Message() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return fmt.Sprintf("El servidor respondió con un error (%d).", e.Code)
}

// DecodeError means the body was not the JSON shape the endpoint promises.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Messages shown for each error kind.
const (
	MsgTransport = "No se pudo conectar con el servidor."
	MsgDecode    = "El servidor envió una respuesta inesperada."
	MsgCanceled  = "La solicitud fue cancelada."
	MsgTimeout   = "El servidor tardó demasiado en responder."
)

// UserMessage turns any error from this package into one line of text for a screen.
// fallback is used for errors of unknown kind.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var (
		status *StatusError
		decode *DecodeError
		tr     *TransportError
		ve     *core.ValidationError
	)
	switch {
	case errors.As(err, &decode):
		return MsgDecode
	case errors.As(err, &ve):
		return ve.Message()
	case errors.As(err, &status):
		return status.Message()
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	case errors.Is(err, context.Canceled):
		return MsgCanceled
	case errors.As(err, &tr):
		return MsgTransport
	default:
		return fallback
	}
}

// Kind names the error category for logs and metrics.
func Kind(err error) string {
	var (
		status *StatusError
		decode *DecodeError
		tr     *TransportError
		ve     *core.ValidationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &decode):
		return "decode"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &status):
		return "status"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &tr):
		return "transport"
	default:
		return "other"
	}
}
