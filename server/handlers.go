package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/premiums/storage/types"
)

const (
	defaultLimit = int32(100)
	maxLimit     = int32(500)
)

var (
	errUnableToFetchPremiums = errors.New("unable to fetch premiums")
	errUnableToFetchFiats    = errors.New("unable to fetch fiats")
	errUnableToFetchAssets   = errors.New("unable to fetch assets")

	errInvalidLimit  = errors.New("invalid limit")
	errInvalidOffset = errors.New("invalid offset")
	errInvalidStatus = errors.New("invalid status")
)

func (s *Server) Premiums(w http.ResponseWriter, r *http.Request) {
	var (
		asOfParam   = r.URL.Query().Get("as_of")
		limitParam  = r.URL.Query().Get("limit")
		offsetParam = r.URL.Query().Get("offset")

		assetParam   = r.URL.Query().Get("asset")
		refFiatParam = r.URL.Query().Get("ref_fiat")
		statusParam  = r.URL.Query().Get("status")
	)

	// Parse the effective date (defaults to now)
	asOf, err := parseAsOf(asOfParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the asset and status (optional)
	asset, status, err := parseAssetAndStatus(assetParam, statusParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the reference fiat (optional)
	refFiat, err := parseOptionalFiat(refFiatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.SnapshotQuery{
		Fiat:    nil,
		Asset:   asset,
		RefFiat: refFiat,
		Status:  status,
		Limit:   limit,
		Offset:  offset,
	}

	page, err := s.storage.SnapshotAsOf(r.Context(), q, asOf)
	if err != nil {
		s.logger.Debug(
			"unable to fetch premiums",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchPremiums,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) PremiumsForFiat(w http.ResponseWriter, r *http.Request) {
	var (
		fiatParam = chi.URLParam(r, "fiat")

		asOfParam   = r.URL.Query().Get("as_of")
		limitParam  = r.URL.Query().Get("limit")
		offsetParam = r.URL.Query().Get("offset")

		assetParam   = r.URL.Query().Get("asset")
		refFiatParam = r.URL.Query().Get("ref_fiat")
		statusParam  = r.URL.Query().Get("status")
	)

	// Parse the fiat currency
	fiat, err := parseFiatSymbol(fiatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the effective date
	asOf, err := parseAsOf(asOfParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the asset and status (optional)
	asset, status, err := parseAssetAndStatus(assetParam, statusParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the reference fiat (optional)
	refFiat, err := parseOptionalFiat(refFiatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.SnapshotQuery{
		Fiat:    &fiat,
		Asset:   asset,
		RefFiat: refFiat,
		Status:  status,
		Limit:   limit,
		Offset:  offset,
	}

	page, err := s.storage.SnapshotAsOf(r.Context(), q, asOf)
	if err != nil {
		s.logger.Debug(
			"unable to fetch premiums",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchPremiums,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) Fiats(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListFiats(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch fiats",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchFiats,
		)

		return
	}

	resp := &FiatsResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Assets(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListAssets(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch assets",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchAssets,
		)

		return
	}

	resp := &AssetsResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseAsOf(asOfRaw string) (time.Time, error) {
	v := strings.TrimSpace(asOfRaw)
	if v == "" {
		return time.Now().UTC(), nil // default is now
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.New("invalid as_of (must be RFC3339 UTC)")
	}

	return t.UTC(), nil
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n) //nolint:gosec // Fine to clamp
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return limit, offset, nil
}

func parseAssetAndStatus(assetRaw, statusRaw string) (*types.Currency, *types.Status, error) {
	var asset *types.Currency

	if v := strings.TrimSpace(assetRaw); v != "" {
		a, err := parseAssetSymbol(v)
		if err != nil {
			return nil, nil, err
		}

		asset = &a
	}

	var status *types.Status

	if v := strings.TrimSpace(statusRaw); v != "" {
		st := types.Status(strings.ToLower(v))

		switch st {
		case types.StatusOK, types.StatusInsufficientData:
			status = &st
		default:
			return nil, nil, errInvalidStatus
		}
	}

	return asset, status, nil
}

func parseOptionalFiat(v string) (*types.Currency, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil //nolint:nilnil // absent filter
	}

	fiat, err := parseFiatSymbol(v)
	if err != nil {
		return nil, err
	}

	return &fiat, nil
}

func parseFiatSymbol(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", errors.New("invalid fiat (must be 3 letters)")
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", errors.New("invalid fiat (must be A-Z)")
		}
	}

	return types.Currency(s), nil
}

func parseAssetSymbol(v string) (types.Currency, error) {
	// Asset tickers run longer than fiat codes (USDT, USDC)
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) < 3 || len(s) > 6 {
		return "", errors.New("invalid asset (must be 3-6 characters)")
	}

	for i := 0; i < len(s); i++ {
		if (s[i] < 'A' || s[i] > 'Z') && (s[i] < '0' || s[i] > '9') {
			return "", errors.New("invalid asset (must be A-Z or 0-9)")
		}
	}

	return types.Currency(s), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err,
	}

	writeJSON(w, status, resp)
}
