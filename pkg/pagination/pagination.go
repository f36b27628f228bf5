package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// ReportLimit is the page size used by report listings.
	ReportLimit = 20
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// NormalizePage enforces a 1-based page number.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizeLimit clamps the limit into [1, MaxLimit], using fallback when the
// input is not positive.
func NormalizeLimit(limit, fallback int) int {
	if fallback < 1 || fallback > MaxLimit {
		fallback = DefaultLimit
	}
	if limit < 1 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset returns the row offset for the normalized page/limit pair.
func (p Params) Offset() int {
	return (NormalizePage(p.Page) - 1) * p.Limit
}

// Meta is the pagination block attached to every list response.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
	NextPage    *int  `json:"next_page"`
	PrevPage    *int  `json:"prev_page"`
}

// NewMeta derives the full metadata block from the requested page, the page
// size, and the total number of matching records before pagination.
//
// total_pages is ceil(total/perPage); an empty result set yields zero pages
// and both navigation flags off, even when a later page was requested.
func NewMeta(page, perPage int, total int64) Meta {
	page = NormalizePage(page)
	if perPage < 1 {
		perPage = DefaultLimit
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	meta := Meta{
		CurrentPage: page,
		TotalPages:  totalPages,
		PerPage:     perPage,
		TotalItems:  total,
	}

	meta.HasNextPage = page < totalPages
	meta.HasPrevPage = page > 1 && total > 0

	if meta.HasNextPage {
		next := page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevPage {
		prev := page - 1
		meta.PrevPage = &prev
	}
	return meta
}
