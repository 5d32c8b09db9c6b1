package transaction

import "time"

// ListFilter narrows a transaction listing. Zero values mean "no
// filter" for the corresponding field.
type ListFilter struct {
	Type     string
	Status   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// Normalize applies pagination defaults.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// ListResult is one page of transactions.
type ListResult struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int64          `json:"total"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
}

// Stats aggregates the ledger over a date range.
type Stats struct {
	Count       int64            `json:"count"`
	TotalAmount int64            `json:"total_amount"`
	ByStatus    map[string]int64 `json:"by_status"`
}
