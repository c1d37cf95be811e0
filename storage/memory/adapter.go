package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sig-0/premiums/storage/types"
)

type key struct {
	fiat, asset, refFiat string
	asOf                 int64 // unix nanos
}

type Storage struct {
	data map[key]types.Snapshot

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]types.Snapshot),
	}
}

func (s *Storage) SaveSnapshot(_ context.Context, snapshot *types.Snapshot) error {
	k := key{
		fiat:    snapshot.Fiat.String(),
		asset:   snapshot.Asset.String(),
		refFiat: snapshot.RefFiat.String(),
		asOf:    snapshot.AsOf.UTC().UnixNano(),
	}

	elem := *snapshot
	elem.AsOf = elem.AsOf.UTC()
	elem.FetchedAt = elem.FetchedAt.UTC()

	s.mu.Lock()
	s.data[k] = elem // key is unique
	s.mu.Unlock()

	return nil
}

func (s *Storage) SnapshotAsOf(
	_ context.Context,
	query *types.SnapshotQuery,
	asOf time.Time,
) (*types.Page[*types.Snapshot], error) {
	cutoff := asOf.UTC()

	var (
		fiat, asset, refFiat, status             string
		hasFiat, hasAsset, hasRefFiat, hasStatus bool
	)

	if query.Fiat != nil {
		fiat = query.Fiat.String()
		hasFiat = true
	}

	if query.Asset != nil {
		asset = query.Asset.String()
		hasAsset = true
	}

	if query.RefFiat != nil {
		refFiat = query.RefFiat.String()
		hasRefFiat = true
	}

	if query.Status != nil {
		status = query.Status.String()
		hasStatus = true
	}

	// A market is the (fiat, asset, ref fiat) triple
	type bucket struct {
		fiat, asset, refFiat string
	}

	s.mu.RLock()

	bestByBucket := make(map[bucket]types.Snapshot)

	for _, v := range s.data {
		if hasFiat && v.Fiat.String() != fiat {
			continue
		}

		if hasAsset && v.Asset.String() != asset {
			continue
		}

		if hasRefFiat && v.RefFiat.String() != refFiat {
			continue
		}

		if hasStatus && v.Status.String() != status {
			continue
		}

		if v.AsOf.After(cutoff) {
			continue
		}

		b := bucket{
			fiat:    v.Fiat.String(),
			asset:   v.Asset.String(),
			refFiat: v.RefFiat.String(),
		}

		cur, ok := bestByBucket[b]
		if !ok ||
			v.AsOf.After(cur.AsOf) ||
			(v.AsOf.Equal(cur.AsOf) && v.FetchedAt.After(cur.FetchedAt)) {
			bestByBucket[b] = v
		}
	}

	s.mu.RUnlock()

	out := make([]*types.Snapshot, 0, len(bestByBucket))
	for _, v := range bestByBucket {
		cp := v
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Fiat != out[j].Fiat {
			return out[i].Fiat.String() < out[j].Fiat.String()
		}

		if out[i].Asset != out[j].Asset {
			return out[i].Asset.String() < out[j].Asset.String()
		}

		return out[i].RefFiat.String() < out[j].RefFiat.String()
	})

	total := int64(len(out))
	if total == 0 {
		return &types.Page[*types.Snapshot]{
			Results: nil,
			Total:   0,
		}, nil
	}

	lim := query.Limit
	if lim == 0 {
		lim = 100
	}

	if lim > 500 {
		lim = 500
	}

	off := query.Offset
	if off > total {
		return &types.Page[*types.Snapshot]{
			Results: nil,
			Total:   total,
		}, nil
	}

	start := int(off)
	end := start + int(lim)

	if end > len(out) {
		end = len(out)
	}

	return &types.Page[*types.Snapshot]{
		Results: out[start:end],
		Total:   total,
	}, nil
}

func (s *Storage) ListFiats(_ context.Context) ([]types.Currency, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.fiat] = struct{}{}
	}

	s.mu.RUnlock()

	return sortedCurrencies(seen), nil
}

func (s *Storage) ListAssets(_ context.Context) ([]types.Currency, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.asset] = struct{}{}
	}

	s.mu.RUnlock()

	return sortedCurrencies(seen), nil
}

func sortedCurrencies(seen map[string]struct{}) []types.Currency {
	out := make([]types.Currency, 0, len(seen))

	for v := range seen {
		out = append(out, types.Currency(v))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out
}
