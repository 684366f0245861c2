// file: internal/models/query.go
package models

import "strings"

// Pagination bounds for product listings.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ProductQuery is the shared filter contract of the product listing endpoints.
// Absent optional filters mean "no constraint", never "false".
type ProductQuery struct {
	Page  int `validate:"min=0"`
	Limit int `validate:"min=0,max=100"`

	// Case-insensitive category name match; Categories is a comma-separated list.
	Category   string
	Categories string

	// Comma-separated lists matched case-insensitively against array fields.
	Craft      string
	Materials  string
	Techniques string

	ShopSlug string
	IDs      string // comma-separated product IDs
	Exclude  string // single product ID removed from results

	MinPrice *float64 `validate:"omitempty,min=0"`
	MaxPrice *float64 `validate:"omitempty,min=0"`

	Featured    *bool
	IsNew       *bool
	CanPurchase *bool

	// Free-text search across name, descriptions and tags.
	Search string

	SortBy string `validate:"omitempty,oneof=price createdAt created_at rating name"`
	Order  string `validate:"omitempty,oneof=ASC DESC asc desc"`

	// Ownership narrowing used by the shop/user listing endpoints.
	ShopID string
	UserID string

	// Unpaginated bulk mode for the shop/user endpoints.
	Unpaginated bool
}

// Normalize applies pagination defaults and clamps the limit.
func (q *ProductQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.Order = strings.ToUpper(q.Order)
	if q.Order != "ASC" && q.Order != "DESC" {
		q.Order = "DESC"
	}
}

// Offset returns the row offset of the requested page.
func (q *ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SplitList splits a comma-separated filter value, trimming blanks.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LowerList lowercases every entry for case-insensitive membership checks.
func LowerList(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
