package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

func cartCommand(a *app) *Command {
	return &Command{
		Name:    "cart",
		Summary: "Manage the quote cart",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "Show the cart",
				Run: func(args []string) error {
					if err := a.open(); err != nil {
						return err
					}
					printCart(a)
					return nil
				},
			},
			cartAddCommand(a),
			{
				Name:    "remove",
				Summary: "Remove a product from the cart",
				Usage:   "storefront cart remove <product-id>",
				Run: func(args []string) error {
					if err := requireArgs(args, 1, "storefront cart remove <product-id>"); err != nil {
						return err
					}
					if err := a.open(); err != nil {
						return err
					}
					a.cart.RemoveItem(a.ctx, args[0])
					printCart(a)
					return nil
				},
			},
			{
				Name:    "set",
				Summary: "Set the quantity of a product; 0 removes it",
				Usage:   "storefront cart set <product-id> <quantity>",
				Run: func(args []string) error {
					if err := requireArgs(args, 2, "storefront cart set <product-id> <quantity>"); err != nil {
						return err
					}
					quantity, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("quantity %q is not a number", args[1])
					}
					if err := a.open(); err != nil {
						return err
					}
					a.cart.SetQuantity(a.ctx, args[0], quantity)
					printCart(a)
					return nil
				},
			},
			{
				Name:    "note",
				Summary: "Attach a note to a cart line",
				Usage:   "storefront cart note <product-id> <text...>",
				Run: func(args []string) error {
					if len(args) < 1 {
						return fmt.Errorf("usage: storefront cart note <product-id> <text...>")
					}
					if err := a.open(); err != nil {
						return err
					}
					a.cart.SetMessage(a.ctx, args[0], strings.Join(args[1:], " "))
					printCart(a)
					return nil
				},
			},
			{
				Name:    "clear",
				Summary: "Empty the cart",
				Run: func(args []string) error {
					if err := a.open(); err != nil {
						return err
					}
					a.cart.Clear(a.ctx)
					fmt.Println("Your quote cart has been cleared.")
					return nil
				},
			},
		},
	}
}

func cartAddCommand(a *app) *Command {
	var (
		quantity int
		message  string
	)
	return &Command{
		Name:    "add",
		Summary: "Add a product to the cart",
		Usage:   "storefront cart add <product-id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
			fs.IntVarP(&quantity, "quantity", "q", 1, "units to add")
			fs.StringVarP(&message, "message", "m", "", "note for this item")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "storefront cart add <product-id> [flags]"); err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}

			products, err := a.api.Products(a.ctx)
			if err != nil {
				return err
			}
			for _, p := range products {
				if p.ID != args[0] {
					continue
				}
				if !p.Available {
					return fmt.Errorf("%s is currently unavailable", p.Title)
				}
				a.cart.AddItem(a.ctx, p, quantity)
				if message = strings.TrimSpace(message); message != "" {
					a.cart.SetMessage(a.ctx, p.ID, message)
				}
				fmt.Printf("Added %s to your quote.\n\n", p.Title)
				printCart(a)
				return nil
			}
			return fmt.Errorf("product %q not found", args[0])
		},
	}
}

func printCart(a *app) {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Your quote cart is empty.")
		return
	}

	tw := newTable()
	fmt.Fprintln(tw, "ID\tPRODUCT\tQUANTITY\tNOTES")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", item.ID, item.Title, item.Quantity, item.Message)
	}
	tw.Flush()
	fmt.Printf("\n%d items in total.\n", a.cart.Count())
}
