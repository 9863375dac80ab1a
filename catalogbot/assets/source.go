// Package assets loads master snapshots and resolves image URLs.
package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// ErrServerMissing is returned when a source has no data for a server.
var ErrServerMissing = errors.New("server data missing")

// Source produces a linked snapshot per server.
type Source interface {
	Name() string
	Load(ctx context.Context, server catalog.Server) (*masters.Snapshot, error)
}

// ObjectChecker reports whether an asset key exists.
type ObjectChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// kindLoader opens the records of one master kind. ok is false when the kind is absent.
type kindLoader func(ctx context.Context, kind string) (decode masters.Decoder, closer func() error, ok bool, err error)

func loadSnapshot(ctx context.Context, server catalog.Server, load kindLoader) (*masters.Snapshot, error) {
	snapshot := masters.NewSnapshot()
	for _, kind := range masters.Kinds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decode, closer, ok, err := load(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s/%s: %w", server, kind, err)
		}
		if !ok {
			continue
		}
		err = snapshot.Add(kind, decode)
		if closer != nil {
			if cerr := closer(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", server, err)
		}
	}
	if err := snapshot.Link(); err != nil {
		return nil, fmt.Errorf("%s: %w", server, err)
	}
	return snapshot, nil
}
