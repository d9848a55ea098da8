package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/erazemk/storefront/internal/catalog"
	"github.com/erazemk/storefront/internal/editor"
	"github.com/erazemk/storefront/internal/imaging"
	"github.com/erazemk/storefront/internal/model"
)

func adminProductCommand(a *app) *Command {
	return &Command{
		Name:    "product",
		Summary: "Create, update and delete products",
		Subcommands: []*Command{
			productSaveCommand(a, "create"),
			productSaveCommand(a, "update"),
			{
				Name:    "delete",
				Summary: "Delete a product and its images",
				Usage:   "storefront admin product delete <product-id>",
				Run: func(args []string) error {
					if err := requireArgs(args, 1, "storefront admin product delete <product-id>"); err != nil {
						return err
					}
					return withSession(a, func() error {
						product, err := findProduct(a, args[0])
						if err != nil {
							return err
						}
						if err := a.editor.Delete(a.ctx, product); err != nil {
							return err
						}
						fmt.Printf("Deleted %s.\n", product.Title)
						return nil
					})
				},
			},
		},
	}
}

// productSaveCommand builds "create" and "update". Update only changes the
// fields whose flags were given.
func productSaveCommand(a *app, name string) *Command {
	var (
		fs           *pflag.FlagSet
		p            model.Product
		unavailable  bool
		images       []string
		removeImages []string
	)

	usage := "storefront admin product create --title <title> --category <id> [flags]"
	summary := "Create a product"
	if name == "update" {
		usage = "storefront admin product update <product-id> [flags]"
		summary = "Update a product"
	}

	return &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
			fs.StringVarP(&p.Title, "title", "t", "", "product title")
			fs.StringVarP(&p.Description, "description", "D", "", "product description")
			fs.StringVar(&p.Category, "category", "", "category id ("+categoryIDs()+")")
			fs.StringVar(&p.PriceRange, "price-range", "", "indicative price range, e.g. \"R 1 000 - R 2 000\"")
			fs.BoolVar(&unavailable, "unavailable", false, "hide the product from quote requests")
			fs.StringSliceVarP(&images, "image", "i", nil, fmt.Sprintf("JPEG, PNG or WebP file up to %d MB to upload (repeatable)", imaging.MaxBytes>>20))
			if name == "update" {
				fs.StringSliceVar(&removeImages, "remove-image", nil, "image URL to remove (repeatable)")
			}
			return fs
		},
		Run: func(args []string) error {
			want := 0
			if name == "update" {
				want = 1
			}
			if err := requireArgs(args, want, usage); err != nil {
				return err
			}

			return withSession(a, func() error {
				draft := editor.Draft{Product: p}
				draft.Product.Available = !unavailable

				if name == "update" {
					current, err := findProduct(a, args[0])
					if err != nil {
						return err
					}
					draft.Product = mergeProduct(current, p, unavailable, fs)
					for _, url := range removeImages {
						draft.RemoveImage(url)
					}
				}

				for _, path := range images {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("reading %s: %w", path, err)
					}
					if err := draft.Stage(path, data); err != nil {
						return err
					}
				}

				saved, err := a.editor.Save(a.ctx, draft, func(done, total int) {
					fmt.Fprintf(os.Stderr, "Uploaded image %d of %d\n", done, total)
				})
				if err != nil {
					if saved.ID != "" && draft.Product.ID == "" {
						return fmt.Errorf("product %s was created but not completed; retry with 'storefront admin product update %s': %w", saved.ID, saved.ID, err)
					}
					return err
				}
				fmt.Printf("Saved %s (%s), %d image(s).\n", saved.Title, saved.ID, len(saved.ImageURLs))
				return nil
			})
		},
	}
}

// mergeProduct applies the flags the user set to current.
func mergeProduct(current, flags model.Product, unavailable bool, fs *pflag.FlagSet) model.Product {
	if fs.Changed("title") {
		current.Title = flags.Title
	}
	if fs.Changed("description") {
		current.Description = flags.Description
	}
	if fs.Changed("category") {
		current.Category = flags.Category
	}
	if fs.Changed("price-range") {
		current.PriceRange = flags.PriceRange
	}
	if fs.Changed("unavailable") {
		current.Available = !unavailable
	}
	return current
}

func findProduct(a *app, id string) (model.Product, error) {
	products, err := a.api.Products(a.ctx)
	if err != nil {
		return model.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, fmt.Errorf("product %q not found", id)
}

func categoryIDs() string {
	ids := make([]string, len(catalog.Categories))
	for i, c := range catalog.Categories {
		ids[i] = c.ID + "=" + c.Name
	}
	return strings.Join(ids, ", ")
}
