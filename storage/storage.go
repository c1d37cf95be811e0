package storage

import (
	"context"
	"time"

	"github.com/sig-0/premiums/storage/types"
)

// Storage is an abstraction over premium snapshot data
type Storage interface {
	// SaveSnapshot saves the given premium snapshot
	SaveSnapshot(context.Context, *types.Snapshot) error

	// SnapshotAsOf fetches the latest snapshot per market,
	// as of the given time
	SnapshotAsOf(context.Context, *types.SnapshotQuery, time.Time) (*types.Page[*types.Snapshot], error)

	// ListFiats lists all fiat currencies present
	ListFiats(context.Context) ([]types.Currency, error)

	// ListAssets lists all stablecoin assets present
	ListAssets(context.Context) ([]types.Currency, error)
}
