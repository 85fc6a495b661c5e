package models

// Default and maximum page sizes for paginated listings.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Scope restricts a listing to the rows a caller may see. It is built from
// the caller identity only, never from request parameters.
type Scope struct {
	All    bool
	UserID int64
}

// PageRequest asks for one page of a listing. A zero PerPage disables
// pagination.
type PageRequest struct {
	Page    int
	PerPage int
}

// Enabled reports whether the listing should be paginated.
func (p PageRequest) Enabled() bool {
	return p.PerPage > 0
}

// Normalize clamps the page number and size into their valid ranges.
func (p PageRequest) Normalize() PageRequest {
	if p.PerPage <= 0 {
		return PageRequest{}
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is a paginated listing result.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// NewPage assembles a page from the rows of one slice and the full total.
func NewPage[T any](data []T, req PageRequest, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := 1
	if req.PerPage > 0 && total > 0 {
		last = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}
	return Page[T]{
		Data:        data,
		CurrentPage: req.Page,
		PerPage:     req.PerPage,
		Total:       total,
		LastPage:    last,
	}
}

// ProjectQuery lists projects.
type ProjectQuery struct {
	Scope  Scope
	Search string
	Page   PageRequest
}

// TaskQuery lists tasks.
type TaskQuery struct {
	Scope      Scope
	Search     string
	AssigneeID int64
	ProjectID  int64
	StatusID   StatusID
	Page       PageRequest
}

// UserQuery lists users.
type UserQuery struct {
	Scope  Scope
	Search string
	Page   PageRequest
}
