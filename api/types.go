// Package api - request and response types for the cost API
package api

import (
	"github.com/shopspring/decimal"

	"sms-cost/core/types"
)

// ComputeRequest is the input to POST /compute
type ComputeRequest struct {
	// Quantity is the number of units consumed
	Quantity int64 `json:"quantity"`

	// Bands is the tariff to price the quantity against
	Bands []types.PriceBand `json:"bands"`
}

// ComputeResponse is the output of POST /compute
type ComputeResponse struct {
	Quantity int64              `json:"quantity"`
	Total    decimal.Decimal    `json:"total"`
	Charges  []types.BandCharge `json:"charges"`
}

// UsageRequest is the input to POST /subjects/{id}/usage
type UsageRequest struct {
	Period   types.Period `json:"period"`
	Quantity int64        `json:"quantity"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes what went wrong
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
