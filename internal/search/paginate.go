package search

import "funmarket/internal/domain"

// Paginate slices an already ordered sequence. A page past the end is empty,
// not an error. page and pageSize must already be normalized.
func Paginate(items []domain.Listing, page, pageSize int) ([]domain.Listing, domain.Pagination) {
	if page < 1 || pageSize < 1 {
		panic("search: paginate called with unnormalized page or page size")
	}
	total := len(items)
	p := domain.Pagination{Page: page, PageSize: pageSize, Total: total}
	if total > 0 {
		p.TotalPages = (total + pageSize - 1) / pageSize
	}

	offset := (page - 1) * pageSize
	p.HasMore = offset+pageSize < total
	if offset >= total {
		return []domain.Listing{}, p
	}
	end := min(offset+pageSize, total)
	out := make([]domain.Listing, end-offset)
	copy(out, items[offset:end])
	return out, p
}
