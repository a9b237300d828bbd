package pagination

import "github.com/Sternrassler/fpds-client/pkg/records"

// DefaultRecordsPerPage is the feed's page size.
const DefaultRecordsPerPage = 10

// State describes the pagination of one query. It is derived once from
// page 1 and never updated from later pages.
type State struct {
	CurrentPage    int `json:"current_page"`
	TotalPages     int `json:"total_pages"`
	TotalRecords   int `json:"total_records"`
	RecordsPerPage int `json:"records_per_page"`
}

// Paginator derives the State of a query from its first page.
type Paginator interface {
	Paginate(firstPage []records.ContractRecord) State
}

// PaginatorFunc adapts a function to the Paginator interface.
type PaginatorFunc func(firstPage []records.ContractRecord) State

// Paginate calls f(firstPage).
func (f PaginatorFunc) Paginate(firstPage []records.ContractRecord) State {
	return f(firstPage)
}

// RecordCountPaginator derives totals from the number of records on page 1.
// The feed never returns more than a page of records per response, so this
// always yields a single page; multi-page fetches need a Paginator that
// knows the upstream total.
type RecordCountPaginator struct {
	RecordsPerPage int
}

// Paginate implements Paginator.
func (p RecordCountPaginator) Paginate(firstPage []records.ContractRecord) State {
	perPage := p.RecordsPerPage
	if perPage <= 0 {
		perPage = DefaultRecordsPerPage
	}

	n := len(firstPage)
	pages := (n + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return State{
		CurrentPage:    1,
		TotalPages:     pages,
		TotalRecords:   n,
		RecordsPerPage: perPage,
	}
}
