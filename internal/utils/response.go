package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page holds the page/limit query parameters of a list request
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset of the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage reads ?page= and ?limit= from the request, clamping limit to maxLimit
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	return Page{Number: number, Limit: limit}
}

// PaginationMetadata represents the standardized pagination metadata
type PaginationMetadata struct {
	TotalItems   int `json:"totalItems"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPaginationMetadata creates the metadata for a page of totalItems
func NewPaginationMetadata(totalItems int, page Page) PaginationMetadata {
	totalPages := (totalItems + page.Limit - 1) / page.Limit
	if totalPages == 0 {
		totalPages = 1
	}
	return PaginationMetadata{
		TotalItems:   totalItems,
		CurrentPage:  page.Number,
		TotalPages:   totalPages,
		ItemsPerPage: page.Limit,
	}
}

// SendPaginatedResponse sends a standardized paginated API response
func SendPaginatedResponse(c *gin.Context, statusCode int, data interface{}, totalItems int, page Page) {
	c.JSON(statusCode, gin.H{
		"data":       data,
		"pagination": NewPaginationMetadata(totalItems, page),
	})
}

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
