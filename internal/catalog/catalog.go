// Package catalog filters, sorts and pages the product list for display.
package catalog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/erazemk/storefront/internal/model"
)

// Availability filters.
const (
	AvailabilityAll         = "all"
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
)

// Sort orders.
const (
	SortTitleAsc     = "title-asc"
	SortTitleDesc    = "title-desc"
	SortCategoryAsc  = "category-asc"
	SortCategoryDesc = "category-desc"
)

// DefaultPageSize is the number of products per page unless chosen otherwise.
const DefaultPageSize = 8

// PageSizes are the page sizes offered to the user.
var PageSizes = []int{4, 8, 12, 16, 24}

// maxPageButtons is the largest page count shown without gaps.
const maxPageButtons = 5

// Category is a product category.
type Category struct {
	ID   string
	Name string
}

// Categories is the fixed category table used by the admin editor.
var Categories = []Category{
	{ID: "1", Name: "Packing Bags"},
	{ID: "2", Name: "Hardware"},
	{ID: "3", Name: "Grinding Mills"},
	{ID: "4", Name: "Electric Cables"},
	{ID: "5", Name: "Equipment"},
	{ID: "6", Name: "Oil Machinery"},
}

// CategoryName returns the display name of a category id, or the id itself
// when it is not in the table.
func CategoryName(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// CategoryOptions returns the distinct categories present in products,
// sorted by name.
func CategoryOptions(products []model.Product) []Category {
	seen := make(map[string]bool)
	var opts []Category
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		opts = append(opts, Category{ID: p.Category, Name: CategoryName(p.Category)})
	}
	slices.SortFunc(opts, func(a, b Category) int {
		return compareFold(a.Name, b.Name)
	})
	return opts
}

// Query selects and orders a page of products.
type Query struct {
	Search       string
	Category     string
	Availability string
	Sort         string
	Page         int
	PageSize     int
}

// Normalize fills in defaults for empty or invalid fields.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Category == "" {
		q.Category = "all"
	}
	switch q.Availability {
	case AvailabilityAvailable, AvailabilityUnavailable:
	default:
		q.Availability = AvailabilityAll
	}
	switch q.Sort {
	case SortTitleAsc, SortTitleDesc, SortCategoryAsc, SortCategoryDesc:
	default:
		q.Sort = SortTitleAsc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// ParseQuery reads a query from URL-style parameters.
func ParseQuery(get func(string) string) Query {
	page, _ := strconv.Atoi(get("page"))
	size, _ := strconv.Atoi(get("size"))
	return Query{
		Search:       get("q"),
		Category:     get("category"),
		Availability: get("availability"),
		Sort:         get("sort"),
		Page:         page,
		PageSize:     size,
	}.Normalize()
}

// Result is one page of matching products.
type Result struct {
	Items      []model.Product
	Total      int
	Page       int
	TotalPages int
}

// Apply filters, sorts and pages products. The input slice is not modified.
func Apply(products []model.Product, q Query) Result {
	q = q.Normalize()

	var list []model.Product
	for _, p := range products {
		if matches(p, q) {
			list = append(list, p)
		}
	}

	slices.SortStableFunc(list, func(a, b model.Product) int {
		switch q.Sort {
		case SortTitleDesc:
			return compareFold(b.Title, a.Title)
		case SortCategoryAsc:
			return compareFold(a.Category, b.Category)
		case SortCategoryDesc:
			return compareFold(b.Category, a.Category)
		default:
			return compareFold(a.Title, b.Title)
		}
	})

	total := len(list)
	pages := max(1, (total+q.PageSize-1)/q.PageSize)
	page := min(q.Page, pages)
	start := (page - 1) * q.PageSize
	end := min(start+q.PageSize, total)

	return Result{
		Items:      list[start:end],
		Total:      total,
		Page:       page,
		TotalPages: pages,
	}
}

func matches(p model.Product, q Query) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if q.Category != "all" && p.Category != q.Category {
		return false
	}
	switch q.Availability {
	case AvailabilityAvailable:
		return p.Available
	case AvailabilityUnavailable:
		return !p.Available
	}
	return true
}

func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// PageWindow returns the page buttons to show for the current page. A zero
// entry marks a gap.
func PageWindow(current, total int) []int {
	if total <= 1 {
		return nil
	}
	current = max(1, min(current, total))

	var pages []int
	if total <= maxPageButtons {
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	pages = append(pages, 1)
	if current > 3 {
		pages = append(pages, 0)
	}
	for i := max(2, current-1); i <= min(total-1, current+1); i++ {
		pages = append(pages, i)
	}
	if current < total-2 {
		pages = append(pages, 0)
	}
	return append(pages, total)
}
