package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sig-0/premiums/storage/types"
)

type Storage struct {
	conn *pgx.Conn
}

func NewStorage(conn *pgx.Conn) *Storage {
	return &Storage{
		conn: conn,
	}
}

func (s *Storage) SaveSnapshot(
	ctx context.Context,
	snapshot *types.Snapshot,
) error {
	var fxBid, fxAsk *float64
	if snapshot.Fx != nil {
		fxBid, fxAsk = &snapshot.Fx.Bid, &snapshot.Fx.Ask
	}

	_, err := s.conn.Exec(
		ctx,
		`INSERT INTO snapshots (
			fiat, asset, ref_fiat,
			sell_rate, buy_rate, fx_bid, fx_ask,
			sell_premium, buy_premium, buy_sell_spread,
			status, as_of, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		snapshot.Fiat.String(),
		snapshot.Asset.String(),
		snapshot.RefFiat.String(),
		snapshot.SellRate,
		snapshot.BuyRate,
		fxBid,
		fxAsk,
		snapshot.SellPremium,
		snapshot.BuyPremium,
		snapshot.BuySellSpread,
		snapshot.Status.String(),
		snapshot.AsOf.UTC(),
		snapshot.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to save snapshot: %w", err)
	}

	return nil
}

func (s *Storage) SnapshotAsOf(
	ctx context.Context,
	query *types.SnapshotQuery,
	asOf time.Time,
) (*types.Page[*types.Snapshot], error) {
	var (
		fiat, asset, refFiat, status *string

		limit  = query.Limit
		offset = query.Offset
	)

	if query.Fiat != nil {
		v := query.Fiat.String()
		fiat = &v
	}

	if query.Asset != nil {
		v := query.Asset.String()
		asset = &v
	}

	if query.RefFiat != nil {
		v := query.RefFiat.String()
		refFiat = &v
	}

	if query.Status != nil {
		v := query.Status.String()
		status = &v
	}

	if limit == 0 {
		limit = 100
	}

	if limit > 500 {
		limit = 500
	}

	rows, err := s.conn.Query(
		ctx,
		`WITH latest AS (
			SELECT DISTINCT ON (fiat, asset, ref_fiat)
				fiat, asset, ref_fiat,
				sell_rate, buy_rate, fx_bid, fx_ask,
				sell_premium, buy_premium, buy_sell_spread,
				status, as_of, fetched_at
			FROM snapshots
			WHERE as_of <= $1
				AND ($2::text IS NULL OR fiat = $2)
				AND ($3::text IS NULL OR asset = $3)
				AND ($4::text IS NULL OR ref_fiat = $4)
				AND ($5::text IS NULL OR status = $5)
			ORDER BY fiat, asset, ref_fiat, as_of DESC, fetched_at DESC
		)
		SELECT *, count(*) OVER () AS total
		FROM latest
		ORDER BY fiat, asset, ref_fiat
		LIMIT $6 OFFSET $7`,
		asOf.UTC(),
		fiat,
		asset,
		refFiat,
		status,
		limit,
		offset,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &types.Page[*types.Snapshot]{
				Results: nil,
				Total:   0,
			}, nil // valid case
		}

		return nil, fmt.Errorf("unable to fetch snapshots: %w", err)
	}
	defer rows.Close()

	var (
		items []*types.Snapshot
		total int64
	)

	for rows.Next() {
		var (
			snapshot                                 types.Snapshot
			fiatCol, assetCol, refFiatCol, statusCol string
			fxBid, fxAsk                             *float64
		)

		err = rows.Scan(
			&fiatCol,
			&assetCol,
			&refFiatCol,
			&snapshot.SellRate,
			&snapshot.BuyRate,
			&fxBid,
			&fxAsk,
			&snapshot.SellPremium,
			&snapshot.BuyPremium,
			&snapshot.BuySellSpread,
			&statusCol,
			&snapshot.AsOf,
			&snapshot.FetchedAt,
			&total,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan snapshot: %w", err)
		}

		snapshot.Fiat = types.Currency(fiatCol)
		snapshot.Asset = types.Currency(assetCol)
		snapshot.RefFiat = types.Currency(refFiatCol)
		snapshot.Status = types.Status(statusCol)

		if fxBid != nil && fxAsk != nil {
			snapshot.Fx = &types.FxPair{
				Bid: *fxBid,
				Ask: *fxAsk,
			}
		}

		items = append(items, &snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read snapshots: %w", err)
	}

	return &types.Page[*types.Snapshot]{
		Results: items,
		Total:   total,
	}, nil
}

func (s *Storage) ListFiats(ctx context.Context) ([]types.Currency, error) {
	return s.listColumn(ctx, `SELECT DISTINCT fiat FROM snapshots ORDER BY fiat`)
}

func (s *Storage) ListAssets(ctx context.Context) ([]types.Currency, error) {
	return s.listColumn(ctx, `SELECT DISTINCT asset FROM snapshots ORDER BY asset`)
}

func (s *Storage) listColumn(ctx context.Context, query string) ([]types.Currency, error) {
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch currencies: %w", err)
	}
	defer rows.Close()

	var out []types.Currency

	for rows.Next() {
		var v string

		if err = rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("unable to scan currency: %w", err)
		}

		out = append(out, types.Currency(v))
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read currencies: %w", err)
	}

	return out, nil
}
