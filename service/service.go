// Package service holds the resource services: all create/read/update/
// delete logic, ownership enforcement and cross-entity invariants live
// here, between the HTTP handlers and the repositories.
package service

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Pagination is the metadata returned alongside every paginated listing.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// clampPage normalizes page/perPage to sane values: page defaults to 1,
// perPage defaults to 10 and is capped at 100.
func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// paginationFor computes the metadata for a page over total items.
func paginationFor(page, perPage int, total int64) Pagination {
	totalPages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		totalPages++
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: total,
	}
}
