package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
)

func quoteCommand(a *app) *Command {
	return &Command{
		Name:    "quote",
		Summary: "Request and track quotes",
		Subcommands: []*Command{
			quoteRequestCommand(a),
			{
				Name:    "verify",
				Summary: "Confirm a quote request with the emailed code",
				Usage:   "storefront quote verify <quote-id> <code>",
				Run: func(args []string) error {
					if err := requireArgs(args, 2, "storefront quote verify <quote-id> <code>"); err != nil {
						return err
					}
					if err := a.open(); err != nil {
						return err
					}
					sub, err := a.api.VerifyQuote(a.ctx, args[0], args[1])
					if err != nil {
						return err
					}
					submitted(a, sub.TrackingCode)
					return nil
				},
			},
			{
				Name:    "track",
				Summary: "Show the status of a quote",
				Usage:   "storefront quote track <tracking-code>",
				Run: func(args []string) error {
					if err := requireArgs(args, 1, "storefront quote track <tracking-code>"); err != nil {
						return err
					}
					if err := a.open(); err != nil {
						return err
					}
					q, err := a.api.TrackQuote(a.ctx, args[0])
					if err != nil {
						return err
					}
					printTracking(a, q)
					return nil
				},
			},
			{
				Name:    "print",
				Summary: "Print a priced quote",
				Usage:   "storefront quote print <tracking-code>",
				Run: func(args []string) error {
					if err := requireArgs(args, 1, "storefront quote print <tracking-code>"); err != nil {
						return err
					}
					if err := a.open(); err != nil {
						return err
					}
					q, err := a.api.TrackQuote(a.ctx, args[0])
					if err != nil {
						return err
					}
					if !quote.ForCustomer(q.Status).ShowDocument {
						return fmt.Errorf("quote %s has not been priced yet (status: %s)", q.Title(), quote.Project(q.Status).Label)
					}
					printDocument(buildDocument(a, q))
					return nil
				},
			},
		},
	}
}

func quoteRequestCommand(a *app) *Command {
	var name, email, message string
	return &Command{
		Name:    "request",
		Summary: "Submit the cart as a quote request",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("request", pflag.ContinueOnError)
			fs.StringVarP(&name, "name", "n", "", "your full name")
			fs.StringVarP(&email, "email", "e", "", "your email address")
			fs.StringVarP(&message, "message", "m", "", "message for the sales team")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "storefront quote request --name <name> --email <email> [flags]"); err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}

			req := quote.RequestFromCart(name, email, message, a.cart.Items())
			if err := req.Validate(); err != nil {
				return err
			}

			sub, err := a.api.SubmitQuote(a.ctx, req)
			if err != nil {
				return err
			}
			if sub.VerificationRequired {
				fmt.Printf("We sent a verification code to %s. Confirm your request with:\n\n", req.Email)
				fmt.Printf("  storefront quote verify %s <code>\n", sub.QuoteID)
				return nil
			}
			submitted(a, sub.TrackingCode)
			return nil
		},
	}
}

// submitted empties the cart once the server accepted a request.
func submitted(a *app, code string) {
	a.cart.Clear(a.ctx)
	fmt.Println("Your quote request has been submitted.")
	fmt.Printf("Tracking code: %s\n", heading(code))
	fmt.Printf("Follow it with: storefront quote track %s\n", code)
}

func printTracking(a *app, q model.Quote) {
	view := quote.ForCustomer(q.Status)
	fmt.Printf("%s  %s\n", heading(q.Title()), badge(q.Status))
	if !q.CreatedAt.IsZero() {
		fmt.Println(muted("Requested " + q.CreatedAt.Format("2 Jan 2006") + " by " + q.GuestName))
	}
	if view.Status == quote.StatusRejected {
		fmt.Println("Unfortunately we are unable to quote on this request.")
	}
	fmt.Println()

	if view.ShowDocument {
		printDocument(buildDocument(a, q))
		return
	}

	tw := newTable()
	fmt.Fprintln(tw, "PRODUCT\tQUANTITY\tNOTES")
	for _, item := range q.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", item.Title(), item.Quantity, item.Message)
	}
	tw.Flush()
}

func buildDocument(a *app, q model.Quote) quote.Document {
	issued := q.UpdatedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	return quote.BuildDocument(q, a.vat, issued)
}

func printDocument(doc quote.Document) {
	fmt.Println(heading("Quotation " + doc.Number))
	fmt.Printf("Issued %s, valid until %s\n", doc.IssuedAt.Format("2 Jan 2006"), doc.ValidUntil.Format("2 Jan 2006"))
	fmt.Printf("%s <%s>\n\n", doc.CustomerName, doc.Email)

	tw := newTable()
	fmt.Fprintln(tw, "PRODUCT\tQUANTITY\tUNIT PRICE\tTOTAL\t")
	for _, line := range doc.Lines {
		unit, total := "-", "-"
		if line.Priced {
			unit, total = quote.FormatCurrency(line.UnitPrice), quote.FormatCurrency(line.LineTotal)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", line.Title, line.Quantity, unit, total)
		if line.Message != "" {
			fmt.Fprintf(tw, "  %s\t\t\t\t\n", line.Message)
		}
	}
	fmt.Fprintf(tw, "\t\t\t\t\n")
	fmt.Fprintf(tw, "Subtotal\t\t\t%s\t\n", quote.FormatCurrency(doc.Totals.Subtotal))
	fmt.Fprintf(tw, "VAT (%s)\t\t\t%s\t\n", quote.FormatRate(doc.Totals.VATRate), quote.FormatCurrency(doc.Totals.VAT))
	fmt.Fprintf(tw, "Total\t\t\t%s\t\n", quote.FormatCurrency(doc.Totals.Total))
	tw.Flush()

	if doc.Totals.Unpriced > 0 {
		fmt.Println(muted(fmt.Sprintf("\n%d item(s) not priced yet.", doc.Totals.Unpriced)))
	}
}
