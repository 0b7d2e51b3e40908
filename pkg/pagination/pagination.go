package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageParams is the page request of a list endpoint.
type PageParams struct {
	Page    int `json:"page" form:"page"`
	PerPage int `json:"per_page" form:"per_page"`
}

// Meta is the paging block of a list envelope.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

const (
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// ParsePageParams reads page and per_page from the query string.
func ParsePageParams(c *gin.Context) *PageParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return &PageParams{Page: page, PerPage: perPage}
}

// NewMeta computes the paging block for total items.
func NewMeta(page, perPage, total int) Meta {
	lastPage := int(math.Ceil(float64(total) / float64(perPage)))
	if lastPage < 1 {
		lastPage = 1
	}
	return Meta{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
}

// HasNext reports whether another page follows.
func (m Meta) HasNext() bool {
	return m.CurrentPage > 0 && m.CurrentPage < m.LastPage
}

// Window clamps [offset, offset+perPage) to n items. Pages far past the end
// yield an empty window instead of an overflowing offset.
func (p *PageParams) Window(n int) (int, int) {
	if p.PerPage < 1 || n <= 0 {
		return 0, 0
	}
	pages := n / p.PerPage
	if n%p.PerPage != 0 {
		pages++
	}
	page := max(p.Page, 1)
	if page-1 >= pages {
		return n, n
	}
	start := (page - 1) * p.PerPage
	end := n
	if p.PerPage < n-start {
		end = start + p.PerPage
	}
	return start, end
}
