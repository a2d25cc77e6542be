package screens

import (
	"context"
	"errors"
	"fmt"

	"fracc/internal/api"
)

// Status is the load state of one screen.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

var ErrTransition = errors.New("invalid screen state transition")

// Load tracks one screen through Idle -> Loading -> Ready|Failed.
// A Failed load may be retried, which re-enters Loading.
type Load[T any] struct {
	Status   Status
	Data     T
	Err      error
	Message  string
	Attempts int
}

// Begin enters Loading. Allowed from Idle and, as a retry, from Failed.
func (l *Load[T]) Begin() error {
	switch l.Status {
	case "", StatusIdle, StatusFailed:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrTransition, l.Status, StatusLoading)
	}
	var zero T
	l.Status = StatusLoading
	l.Data = zero
	l.Err = nil
	l.Message = ""
	l.Attempts++
	return nil
}

// Finish leaves Loading. Any error discards data, there is no partial success.
func (l *Load[T]) Finish(data T, err error, fallback string) error {
	if l.Status != StatusLoading {
		return fmt.Errorf("%w: %s -> finished", ErrTransition, l.Status)
	}
	if err != nil {
		var zero T
		l.Status = StatusFailed
		l.Data = zero
		l.Err = err
		l.Message = api.UserMessage(err, fallback)
		return nil
	}
	l.Status = StatusReady
	l.Data = data
	return nil
}

func (l *Load[T]) Ready() bool  { return l.Status == StatusReady }
func (l *Load[T]) Failed() bool { return l.Status == StatusFailed }

// Run performs one load cycle with fetch.
func Run[T any](ctx context.Context, l *Load[T], fallback string, fetch func(context.Context) (T, error)) error {
	if err := l.Begin(); err != nil {
		return err
	}
	data, err := fetch(ctx)
	return l.Finish(data, err, fallback)
}
