// Package common defines shared value types used across API boundaries.
package common

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var errRangeInverted = errors.New("date range: from is after to")

// ID is a string alias for UUID v4.
type ID string

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Metadata is an open-ended key-value bag.
type Metadata map[string]interface{}

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// Normalize clamps pagination to sane defaults.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// DateRange defines a closed calendar interval.  Dates use the "2006-01-02"
// layout; either bound may be empty, which leaves that side open.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

const dateLayout = "2006-01-02"

// IsZero reports whether both bounds are empty.
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == ""
}

// Validate checks that any non-empty bound parses and that From <= To.
func (r DateRange) Validate() error {
	var from, to time.Time
	var err error
	if r.From != "" {
		if from, err = time.Parse(dateLayout, r.From); err != nil {
			return err
		}
	}
	if r.To != "" {
		if to, err = time.Parse(dateLayout, r.To); err != nil {
			return err
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return errRangeInverted
	}
	return nil
}

// Contains reports whether t falls inside the range.  An open bound always
// matches on its side.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != "" {
		if from, err := time.Parse(dateLayout, r.From); err == nil && t.Before(from) {
			return false
		}
	}
	if r.To != "" {
		// To is inclusive for the whole day.
		if to, err := time.Parse(dateLayout, r.To); err == nil && t.After(to.Add(24*time.Hour-time.Nanosecond)) {
			return false
		}
	}
	return true
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// APIResponse is the generic wrapper for all API responses.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// HealthStatus indicates the health of a component or service.
type HealthStatus string

const (
	HealthUp       HealthStatus = "up"
	HealthDown     HealthStatus = "down"
	HealthDegraded HealthStatus = "degraded"
)

// ComponentHealth provides health information for a specific component.
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Latency string       `json:"latency,omitempty"`
	Message string       `json:"message,omitempty"`
}
