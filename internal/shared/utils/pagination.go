package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination paramètres page / per_page d'une liste
type Pagination struct {
	Page    int
	PerPage int
}

// PaginationMeta bloc "meta" des réponses paginées
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// ParsePagination lit page et per_page, valeurs invalides ramenées aux bornes
func ParsePagination(c *gin.Context) Pagination {
	return NewPagination(c.Query("page"), c.Query("per_page"))
}

func NewPagination(page, perPage string) Pagination {
	p := Pagination{Page: 1, PerPage: DefaultPerPage}
	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(perPage); err == nil && v > 0 {
		p.PerPage = v
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Pagination) Limit() int {
	return p.PerPage
}

// Meta construit le bloc meta pour total éléments
func (p Pagination) Meta(total int64) PaginationMeta {
	lastPage := 1
	if total > 0 {
		lastPage = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return PaginationMeta{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
}
