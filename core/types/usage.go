// Package types - Usage types
package types

import "github.com/google/uuid"

// UsageRecord adds Quantity units to a subject's usage for a period
type UsageRecord struct {
	Subject  uuid.UUID `json:"subject"`
	Period   Period    `json:"period"`
	Quantity int64     `json:"quantity"`
}
