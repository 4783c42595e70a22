// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParseSubject parses a subject identifier
func ParseSubject(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject id %q: %w", s, err)
	}
	return id, nil
}

// Period is a calendar month for which usage is billed
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a period
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a period in YYYY-MM form
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (want YYYY-MM): %w", s, err)
	}
	return PeriodOf(t), nil
}

// IsValid checks the month and year are in range
func (p Period) IsValid() bool {
	return p.Year >= 1 && p.Month >= time.January && p.Month <= time.December
}

// String returns the YYYY-MM form
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MarshalText encodes the period as YYYY-MM
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a YYYY-MM period
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
