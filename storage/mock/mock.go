package mock

import (
	"context"
	"time"

	"github.com/sig-0/premiums/storage/types"
)

type (
	SaveSnapshotDelegate func(context.Context, *types.Snapshot) error
	SnapshotAsOfDelegate func(context.Context, *types.SnapshotQuery, time.Time) (*types.Page[*types.Snapshot], error)
	ListFiatsDelegate    func(context.Context) ([]types.Currency, error)
	ListAssetsDelegate   func(context.Context) ([]types.Currency, error)
)

type Storage struct {
	SaveSnapshotFn SaveSnapshotDelegate
	SnapshotAsOfFn SnapshotAsOfDelegate
	ListFiatsFn    ListFiatsDelegate
	ListAssetsFn   ListAssetsDelegate
}

func (m *Storage) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	if m.SaveSnapshotFn != nil {
		return m.SaveSnapshotFn(ctx, snapshot)
	}

	return nil
}

func (m *Storage) SnapshotAsOf(
	ctx context.Context,
	query *types.SnapshotQuery,
	at time.Time,
) (*types.Page[*types.Snapshot], error) {
	if m.SnapshotAsOfFn != nil {
		return m.SnapshotAsOfFn(ctx, query, at)
	}

	return nil, nil
}

func (m *Storage) ListFiats(ctx context.Context) ([]types.Currency, error) {
	if m.ListFiatsFn != nil {
		return m.ListFiatsFn(ctx)
	}

	return nil, nil
}

func (m *Storage) ListAssets(ctx context.Context) ([]types.Currency, error) {
	if m.ListAssetsFn != nil {
		return m.ListAssetsFn(ctx)
	}

	return nil, nil
}
