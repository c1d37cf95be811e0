package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/premiums/storage/mock"

	"github.com/sig-0/premiums/storage/types"
)

func TestHandlers_PremiumsForFiat(t *testing.T) {
	t.Parallel()

	t.Run("invalid fiat", func(t *testing.T) {
		t.Parallel()

		var called bool

		storage := &mock.Storage{
			SnapshotAsOfFn: func(
				_ context.Context,
				_ *types.SnapshotQuery,
				_ time.Time,
			) (*types.Page[*types.Snapshot], error) {
				called = true

				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/premiums/MX", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"fiat": "MX",
		})

		w := httptest.NewRecorder()
		s.PremiumsForFiat(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			SnapshotAsOfFn: func(
				_ context.Context,
				_ *types.SnapshotQuery,
				_ time.Time,
			) (*types.Page[*types.Snapshot], error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/premiums/MXN", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"fiat": types.CurrencyMXN.String(),
		})

		w := httptest.NewRecorder()
		s.PremiumsForFiat(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var (
			capturedQuery *types.SnapshotQuery
			capturedAsOf  time.Time
		)

		expectedAsOf := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

		storage := &mock.Storage{
			SnapshotAsOfFn: func(
				_ context.Context,
				query *types.SnapshotQuery,
				asOf time.Time,
			) (*types.Page[*types.Snapshot], error) {
				capturedQuery = query
				capturedAsOf = asOf

				return &types.Page[*types.Snapshot]{
					Results: []*types.Snapshot{{
						Fiat:    types.CurrencyMXN,
						Asset:   types.CurrencyUSDT,
						RefFiat: types.CurrencyUSD,
						Status:  types.StatusOK,
					}},
					Total: 1,
				}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		url := "/v1/premiums/MXN?as_of=2026-01-10T00:00:00Z" +
			"&limit=200&offset=2&asset=USDT&ref_fiat=USD&status=ok"
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"fiat": types.CurrencyMXN.String(),
		})

		w := httptest.NewRecorder()
		s.PremiumsForFiat(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page types.Page[*types.Snapshot]

		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		require.Len(t, page.Results, 1)
		assert.Equal(t, int64(1), page.Total)

		require.NotNil(t, capturedQuery)

		require.NotNil(t, capturedQuery.Fiat)
		assert.Equal(t, types.CurrencyMXN, *capturedQuery.Fiat)

		require.NotNil(t, capturedQuery.Asset)
		assert.Equal(t, types.CurrencyUSDT, *capturedQuery.Asset)

		require.NotNil(t, capturedQuery.RefFiat)
		assert.Equal(t, types.CurrencyUSD, *capturedQuery.RefFiat)

		require.NotNil(t, capturedQuery.Status)
		assert.Equal(t, types.StatusOK, *capturedQuery.Status)

		assert.Equal(t, int32(200), capturedQuery.Limit)
		assert.Equal(t, int64(2), capturedQuery.Offset)
		assert.Equal(t, expectedAsOf, capturedAsOf)
	})
}

func TestHandlers_Premiums(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			SnapshotAsOfFn: func(
				_ context.Context,
				_ *types.SnapshotQuery,
				_ time.Time,
			) (*types.Page[*types.Snapshot], error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/premiums", http.NoBody)

		w := httptest.NewRecorder()
		s.Premiums(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/v1/premiums?status=nope",
			http.NoBody,
		)

		w := httptest.NewRecorder()
		s.Premiums(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var (
			capturedQuery *types.SnapshotQuery
			capturedAsOf  time.Time
		)

		expectedAsOf := time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC)

		storage := &mock.Storage{
			SnapshotAsOfFn: func(
				_ context.Context,
				query *types.SnapshotQuery,
				asOf time.Time,
			) (*types.Page[*types.Snapshot], error) {
				capturedQuery = query
				capturedAsOf = asOf

				return &types.Page[*types.Snapshot]{
					Results: []*types.Snapshot{{
						Fiat:    types.CurrencyBRL,
						Asset:   types.CurrencyUSDT,
						RefFiat: types.CurrencyUSD,
						Status:  types.StatusInsufficientData,
					}},
					Total: 1,
				}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		url := "/v1/premiums?as_of=2026-01-11T00:00:00Z" +
			"&limit=50&offset=3&status=insufficient_data"
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)

		w := httptest.NewRecorder()
		s.Premiums(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page types.Page[*types.Snapshot]

		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		require.Len(t, page.Results, 1)
		assert.Equal(t, int64(1), page.Total)

		require.NotNil(t, capturedQuery)

		assert.Nil(t, capturedQuery.Fiat)
		assert.Nil(t, capturedQuery.Asset)
		assert.Nil(t, capturedQuery.RefFiat)

		require.NotNil(t, capturedQuery.Status)
		assert.Equal(t, types.StatusInsufficientData, *capturedQuery.Status)

		assert.Equal(t, int32(50), capturedQuery.Limit)
		assert.Equal(t, int64(3), capturedQuery.Offset)

		assert.Equal(t, expectedAsOf, capturedAsOf)
	})
}

func TestHandlers_ListEndpoints(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		path     string
		handler  func(*Server, http.ResponseWriter, *http.Request)
		expected []string
	}{
		{
			name: "fiats",
			path: "/v1/fiats",
			handler: func(s *Server, w http.ResponseWriter, r *http.Request) {
				s.Fiats(w, r)
			},
			expected: []string{types.CurrencyMXN.String(), types.CurrencyBRL.String()},
		},
		{
			name: "assets",
			path: "/v1/assets",
			handler: func(s *Server, w http.ResponseWriter, r *http.Request) {
				s.Assets(w, r)
			},
			expected: []string{types.CurrencyUSDT.String()},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			t.Run("storage error", func(t *testing.T) {
				t.Parallel()

				s := &Server{
					storage: listStorage(t, testCase.name, nil, errors.New("boom")),
					logger:  noopLogger,
				}

				req := httptest.NewRequest(http.MethodGet, testCase.path, http.NoBody)
				w := httptest.NewRecorder()

				testCase.handler(s, w, req)

				assert.Equal(t, http.StatusInternalServerError, w.Code)
			})

			t.Run("success", func(t *testing.T) {
				t.Parallel()

				s := &Server{
					storage: listStorage(t, testCase.name, testCase.expected, nil),
					logger:  noopLogger,
				}

				req := httptest.NewRequest(http.MethodGet, testCase.path, http.NoBody)
				w := httptest.NewRecorder()

				testCase.handler(s, w, req)

				require.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, testCase.expected, decodeListResults(t, w))
			})
		})
	}
}

func TestUtils_ParseAsOf(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		expected := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

		value, err := parseAsOf("2026-01-12T00:00:00Z")

		require.NoError(t, err)
		assert.Equal(t, expected, value)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := parseAsOf("nope")

		assert.Error(t, err)
	})
}

func TestUtils_ParseLimitOffset(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		limit, offset, err := parseLimitOffset("", "")

		require.NoError(t, err)
		assert.Equal(t, int32(100), limit)
		assert.Equal(t, int64(0), offset)
	})

	t.Run("clamps limit", func(t *testing.T) {
		t.Parallel()

		limit, offset, err := parseLimitOffset("999", "5")

		require.NoError(t, err)
		assert.Equal(t, int32(500), limit)
		assert.Equal(t, int64(5), offset)
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseLimitOffset("nope", "0")

		assert.ErrorIs(t, err, errInvalidLimit)
	})

	t.Run("invalid offset", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseLimitOffset("10", "nope")

		assert.ErrorIs(t, err, errInvalidOffset)
	})
}

func TestUtils_ParseAssetAndStatus(t *testing.T) {
	t.Parallel()

	t.Run("valid status", func(t *testing.T) {
		t.Parallel()

		asset, status, err := parseAssetAndStatus(
			types.CurrencyUSDT.String(),
			"ok",
		)

		require.NoError(t, err)
		require.NotNil(t, asset)
		require.NotNil(t, status)

		assert.Equal(t, types.CurrencyUSDT, *asset)
		assert.Equal(t, types.StatusOK, *status)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseAssetAndStatus("", "nope")

		assert.ErrorIs(t, err, errInvalidStatus)
	})
}

func TestUtils_ParseFiatSymbol(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		value, err := parseFiatSymbol(types.CurrencyMXN.String())

		require.NoError(t, err)
		assert.Equal(t, types.CurrencyMXN, value)
	})

	t.Run("lowercase input", func(t *testing.T) {
		t.Parallel()

		value, err := parseFiatSymbol("mxn")

		require.NoError(t, err)
		assert.Equal(t, types.CurrencyMXN, value)
	})

	t.Run("invalid length", func(t *testing.T) {
		t.Parallel()

		_, err := parseFiatSymbol("MXNN")

		assert.Error(t, err)
	})

	t.Run("invalid chars", func(t *testing.T) {
		t.Parallel()

		_, err := parseFiatSymbol("MX$")

		assert.Error(t, err)
	})
}

func TestUtils_ParseOptionalFiat(t *testing.T) {
	t.Parallel()

	t.Run("blank is absent", func(t *testing.T) {
		t.Parallel()

		value, err := parseOptionalFiat("  ")

		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		value, err := parseOptionalFiat("eur")

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, types.CurrencyEUR, *value)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := parseOptionalFiat("EU$")

		assert.Error(t, err)
	})
}

func TestUtils_ParseAssetSymbol(t *testing.T) {
	t.Parallel()

	t.Run("valid length 4", func(t *testing.T) {
		t.Parallel()

		value, err := parseAssetSymbol(types.CurrencyUSDT.String())

		require.NoError(t, err)
		assert.Equal(t, types.CurrencyUSDT, value)
	})

	t.Run("invalid length", func(t *testing.T) {
		t.Parallel()

		_, err := parseAssetSymbol("US")

		assert.Error(t, err)
	})

	t.Run("invalid chars", func(t *testing.T) {
		t.Parallel()

		_, err := parseAssetSymbol("USD$")

		assert.Error(t, err)
	})
}

func withRouteParams(t *testing.T, req *http.Request, params map[string]string) *http.Request {
	t.Helper()

	rctx := chi.NewRouteContext()

	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func listStorage(t *testing.T, kind string, results []string, err error) *mock.Storage {
	t.Helper()

	switch kind {
	case "fiats":
		return &mock.Storage{
			ListFiatsFn: func(_ context.Context) ([]types.Currency, error) {
				if err != nil {
					return nil, err
				}

				return toCurrencies(t, results), nil
			},
		}
	case "assets":
		return &mock.Storage{
			ListAssetsFn: func(_ context.Context) ([]types.Currency, error) {
				if err != nil {
					return nil, err
				}

				return toCurrencies(t, results), nil
			},
		}
	default:
		return &mock.Storage{}
	}
}

func toCurrencies(t *testing.T, results []string) []types.Currency {
	t.Helper()

	items := make([]types.Currency, 0, len(results))
	for _, value := range results {
		items = append(items, types.Currency(value))
	}

	return items
}

func decodeListResults(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var resp struct {
		Results []string `json:"results"`
	}

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	return resp.Results
}
