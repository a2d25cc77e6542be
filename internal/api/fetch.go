package api

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FetchAll runs every fetch concurrently and waits for all of them.
//
// The first error is returned and cancels the context handed to the others;
// results already written by siblings must be discarded by the caller.
func FetchAll(ctx context.Context, fetches ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fetch := range fetches {
		fetch := fetch
		g.Go(func() error { return fetch(gctx) })
	}
	return g.Wait()
}

// Into adapts a typed fetch so its result lands in dst.
func Into[T any](dst *T, fetch func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
