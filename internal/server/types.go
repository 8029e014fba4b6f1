package server

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
	"github.com/rezonia/cfdi-reader/internal/store"
)

// ExtractResponse is the response for the extraction endpoint
type ExtractResponse struct {
	ID         string                `json:"id,omitempty"`
	Source     string                `json:"source"`
	Summary    *model.InvoiceSummary `json:"summary"`
	GrandTotal decimal.Decimal       `json:"grandTotal"`
}

// HistoryResponse is the response for the history listing endpoint
type HistoryResponse struct {
	Records []*store.Record `json:"records"`
	Count   int             `json:"count"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Name string     `json:"name"`
	Size int        `json:"size"`
	Info *cfdi.Info `json:"info"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Kind  string `json:"kind,omitempty"`
}
