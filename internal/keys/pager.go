package keys

// PageSize is the number of records shown per page.
const PageSize = 8

// Pager tracks the current 1-based page over a projected list.
type Pager struct {
	page int
}

// NewPager starts on page 1.
func NewPager() Pager {
	return Pager{page: 1}
}

// TotalPages returns ceil(n / PageSize), 0 when n is 0.
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Page returns the current page, never below 1.
func (p Pager) Page() int {
	if p.page < 1 {
		return 1
	}
	return p.page
}

// Window slices list for the current page. Out-of-range pages yield nil.
func (p Pager) Window(list []Record) []Record {
	start := (p.Page() - 1) * PageSize
	if start >= len(list) {
		return nil
	}
	end := start + PageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// Reset goes back to page 1.
func (p *Pager) Reset() {
	p.page = 1
}

// First goes to page 1.
func (p *Pager) First() {
	p.page = 1
}

// Prev moves back one page; no-op on page 1.
func (p *Pager) Prev() {
	if p.Page() > 1 {
		p.page = p.Page() - 1
	}
}

// Next moves forward one page; no-op on the last page.
func (p *Pager) Next(total int) {
	if p.Page() < total {
		p.page = p.Page() + 1
	}
}

// Last jumps to the last page, staying on 1 when there are no pages.
func (p *Pager) Last(total int) {
	if total < 1 {
		p.page = 1
		return
	}
	p.page = total
}

// Clamp pulls the page back into [1, max(total, 1)].
func (p *Pager) Clamp(total int) {
	if total < 1 {
		total = 1
	}
	if p.Page() > total {
		p.page = total
	}
}

// HasPrev reports whether Prev would move.
func (p Pager) HasPrev() bool {
	return p.Page() > 1
}

// HasNext reports whether Next would move.
func (p Pager) HasNext(total int) bool {
	return p.Page() < total
}
