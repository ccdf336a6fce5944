package db

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// PagingParams define os parâmetros básicos de entrada
type PagingParams struct {
	Page    int
	PerPage int
}

func (p PagingParams) Offset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.Limit()
}

func (p PagingParams) Limit() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	return min(p.PerPage, MaxPerPage)
}

// PagedResult encapsula os dados e os metadados da página
type PagedResult[T any] struct {
	Items       []T `json:"items"`
	TotalItems  int `json:"total_items"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

func NewPagedResult[T any](items []T, total int, p PagingParams) PagedResult[T] {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return PagedResult[T]{
		Items:       items,
		TotalItems:  total,
		CurrentPage: page,
		PerPage:     p.Limit(),
	}
}

func (p PagedResult[T]) TotalPages() int {
	if p.PerPage == 0 {
		return 0
	}
	return (p.TotalItems + p.PerPage - 1) / p.PerPage
}
