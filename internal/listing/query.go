// Package listing normalizes untrusted list-request parameters into a safe,
// deterministic query shape shared by the relational and in-memory stores.
package listing

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/svelazco/storeflow-backend/pkg/pagination"
)

const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Input is the raw, untrusted parameter set of a listing request.
type Input struct {
	Search    string
	Category  string
	Status    string
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
}

// FromRequest extracts the listing parameters from the request query string.
func FromRequest(r *http.Request) Input {
	q := r.URL.Query()
	return Input{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Status:    q.Get("status"),
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
}

// Options declares the per-record-type normalization rules.
type Options struct {
	SortFields   []string
	DefaultSort  string
	DefaultOrder string
	DefaultLimit int
}

// Query is the canonical descriptor every store implementation accepts.
// Search, Category, and Status are opaque filters; empty means "not applied".
type Query struct {
	Search    string
	Category  string
	Status    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize builds a Query from arbitrary input. It never fails: out-of-range
// and malformed values are clamped or replaced by the type defaults.
func Normalize(in Input, opts Options) Query {
	page := 1
	if n, err := strconv.Atoi(strings.TrimSpace(in.Page)); err == nil {
		page = pagination.NormalizePage(n)
	}

	limit := pagination.NormalizeLimit(0, opts.DefaultLimit)
	if n, err := strconv.Atoi(strings.TrimSpace(in.Limit)); err == nil {
		limit = pagination.NormalizeLimit(n, opts.DefaultLimit)
	}

	sortBy := opts.DefaultSort
	if requested := strings.TrimSpace(in.SortBy); requested != "" && slices.Contains(opts.SortFields, requested) {
		sortBy = requested
	}

	order := strings.ToUpper(opts.DefaultOrder)
	if order != OrderDesc {
		order = OrderAsc
	}
	switch strings.ToUpper(strings.TrimSpace(in.SortOrder)) {
	case OrderAsc:
		order = OrderAsc
	case OrderDesc:
		order = OrderDesc
	}

	return Query{
		Search:    in.Search,
		Category:  in.Category,
		Status:    in.Status,
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: order,
	}
}

// Params returns the pagination view of the query.
func (q Query) Params() pagination.Params {
	return pagination.Params{Page: q.Page, Limit: q.Limit}
}

// Desc reports whether the query sorts descending.
func (q Query) Desc() bool {
	return q.SortOrder == OrderDesc
}

// EchoedFilters is the normalized filter block echoed in list responses.
type EchoedFilters struct {
	Search    string `json:"search"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// Filters echoes the normalized inputs, reflecting any substitutions the
// normalizer made rather than the raw request values.
func (q Query) Filters() EchoedFilters {
	return EchoedFilters{
		Search:    q.Search,
		Category:  q.Category,
		Status:    q.Status,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}
