package source

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrUpstreamFetch is returned when a remote file cannot be downloaded.
// Downloads are never retried.
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// File is a downloaded source file. Name may be empty when the remote store
// does not expose one.
type File struct {
	Name string
	Data []byte
}

//go:generate mockgen -source=source.go -destination=mocks/fetcher.go -package=mocks

// Fetcher downloads a file by its remote identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (File, error)
}

// UpstreamError wraps err as an ErrUpstreamFetch for the named store.
func UpstreamError(store, id string, err error) error {
	return fmt.Errorf("%w: %s item %s: %w", ErrUpstreamFetch, store, id, err)
}

// FetchPair downloads the inventory and sales files concurrently. The first
// failure cancels the other download.
func FetchPair(ctx context.Context, f Fetcher, invID, venID string) (inv, ven File, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		inv, err = f.Fetch(gctx, invID)
		if err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ven, err = f.Fetch(gctx, venID)
		if err != nil {
			return fmt.Errorf("sales: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return File{}, File{}, err
	}
	return inv, ven, nil
}
