package server

import "github.com/sig-0/premiums/storage/types"

type FiatsResponse struct {
	Results []types.Currency `json:"results"`
}

type AssetsResponse struct {
	Results []types.Currency `json:"results"`
}

type ErrorResponse struct {
	Error error `json:"error"`
}
