package repository

// Page mirrors the paginator shape the admin dashboard consumes.
type Page struct {
	Data        interface{} `json:"data"`
	CurrentPage int         `json:"current_page"`
	PerPage     int         `json:"per_page"`
	Total       int64       `json:"total"`
	LastPage    int         `json:"last_page"`
}

// NewPage assembles a Page from a result slice and its total row count.
func NewPage(data interface{}, page, perPage int, total int64) *Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return &Page{
		Data:        data,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    last,
	}
}
