// Package paginator owns the evolving request-parameter state used to fetch
// successive pages from the item service.
//
// The default policy is offset-based: a "start" field advanced by the page
// size after every successful fetch. Cursor-style services can substitute
// any deterministic AdvanceFunc of the current state.
package paginator

import "github.com/quickload/quickload/pkg/query"

// Default field names and page size for the offset policy.
const (
	DefaultStartField = "start"
	DefaultCountField = "count"
	DefaultPageSize   = 50
)

// State is the pagination parameter mapping sent with each fetch.
// It is advanced only after the fetch that used it has succeeded.
type State = query.Params

// AdvanceFunc computes the parameters for the next fetch from the current
// ones. Implementations must be pure: no I/O, no shared mutation, output a
// fresh State rather than modifying the input.
type AdvanceFunc func(State) State

// Offset implements start/count offset pagination.
type Offset struct {
	// StartField is the parameter advanced between fetches (default "start").
	StartField string

	// CountField is the page size parameter (default "count").
	CountField string

	// PageSize is the number of items requested per fetch (default 50).
	PageSize int
}

// NewOffset returns an offset paginator with the given page size.
// Zero or negative pageSize falls back to DefaultPageSize.
func NewOffset(pageSize int) Offset {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Offset{
		StartField: DefaultStartField,
		CountField: DefaultCountField,
		PageSize:   pageSize,
	}
}

// InitialState returns the starting parameters: start=0 and the page size.
func (o Offset) InitialState() State {
	s := query.NewParams()
	s.SetInt(o.startField(), 0)
	s.SetInt(o.countField(), o.pageSize())
	return s
}

// Advance increments the start field by the batch size just consumed,
// leaving every other field untouched. A missing or malformed start field
// is treated as 0.
func (o Offset) Advance(state State) State {
	next := state.Clone()
	start, _ := next.GetInt(o.startField())
	next.SetInt(o.startField(), start+o.pageSize())
	return next
}

func (o Offset) startField() string {
	if o.StartField == "" {
		return DefaultStartField
	}
	return o.StartField
}

func (o Offset) countField() string {
	if o.CountField == "" {
		return DefaultCountField
	}
	return o.CountField
}

func (o Offset) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}
