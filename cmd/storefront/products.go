package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/erazemk/storefront/internal/catalog"
)

func productsCommand(a *app) *Command {
	var q catalog.Query
	return &Command{
		Name:    "products",
		Summary: "List catalog products",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("products", pflag.ContinueOnError)
			fs.StringVarP(&q.Search, "search", "s", "", "filter by title or description")
			fs.StringVar(&q.Category, "category", "all", "category id")
			fs.StringVar(&q.Availability, "availability", catalog.AvailabilityAll, "all, available or unavailable")
			fs.StringVar(&q.Sort, "sort", catalog.SortTitleAsc, "title-asc, title-desc, category-asc or category-desc")
			fs.IntVarP(&q.Page, "page", "p", 1, "page number")
			fs.IntVar(&q.PageSize, "size", catalog.DefaultPageSize, "products per page")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "storefront products [flags]"); err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}

			products, err := a.api.Products(a.ctx)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Println("No products available. Check back later for new products.")
				return nil
			}

			res := catalog.Apply(products, q)
			if len(res.Items) == 0 {
				fmt.Println("No products match your filters.")
				return nil
			}

			tw := newTable()
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE RANGE\tAVAILABLE")
			for _, p := range res.Items {
				available := "yes"
				if !p.Available {
					available = muted("no")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, catalog.CategoryName(p.Category), p.PriceRange, available)
			}
			tw.Flush()

			fmt.Printf("\nShowing %d of %d products. %s\n", len(res.Items), res.Total, pager(res))
			return nil
		},
	}
}

// pager describes the page position, e.g. "Page 2 of 9: 1 … [2] 3 … 9".
func pager(res catalog.Result) string {
	window := catalog.PageWindow(res.Page, res.TotalPages)
	if window == nil {
		return ""
	}
	parts := make([]string, len(window))
	for i, n := range window {
		switch n {
		case 0:
			parts[i] = "…"
		case res.Page:
			parts[i] = "[" + strconv.Itoa(n) + "]"
		default:
			parts[i] = strconv.Itoa(n)
		}
	}
	return fmt.Sprintf("Page %d of %d: %s", res.Page, res.TotalPages, strings.Join(parts, " "))
}
