package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/erazemk/storefront/internal/api"
	"github.com/erazemk/storefront/internal/auth"
	"github.com/erazemk/storefront/internal/model"
	"github.com/erazemk/storefront/internal/quote"
)

var errNotLoggedIn = errors.New("not logged in; run 'storefront admin login' first")

func adminCommand(a *app) *Command {
	return &Command{
		Name:    "admin",
		Summary: "Manage quotes and products",
		Subcommands: []*Command{
			adminLoginCommand(a),
			{
				Name:    "logout",
				Summary: "End the admin session",
				Run: func(args []string) error {
					if err := a.open(); err != nil {
						return err
					}
					if err := a.session.Logout(a.ctx); err != nil {
						return err
					}
					fmt.Println("You have been logged out.")
					return nil
				},
			},
			{
				Name:    "whoami",
				Summary: "Show the logged in admin",
				Run: func(args []string) error {
					if err := a.open(); err != nil {
						return err
					}
					if err := requireSession(a); err != nil {
						return err
					}
					admin := a.session.Admin()
					fmt.Printf("%s <%s>\n", admin.DisplayName(), admin.Email)
					if claims, err := auth.ParseClaims(a.session.Token()); err == nil {
						if exp := claims.ExpiresAtTime(); claims.Expired(time.Now()) {
							fmt.Println(muted("Token expired at " + exp.Local().Format(time.DateTime) + "; the API may ask you to log in again"))
						} else if !exp.IsZero() {
							fmt.Println(muted("Session valid until " + exp.Local().Format(time.DateTime)))
						}
					}
					return nil
				},
			},
			adminQuotesCommand(a),
			{
				Name:    "show",
				Summary: "Show a quote with its items and totals",
				Usage:   "storefront admin show <quote-id>",
				Run: func(args []string) error {
					if err := requireArgs(args, 1, "storefront admin show <quote-id>"); err != nil {
						return err
					}
					return withSession(a, func() error {
						q, err := a.api.FindQuote(a.ctx, args[0])
						if err != nil {
							return err
						}
						printAdminQuote(a, q)
						return nil
					})
				},
			},
			{
				Name:    "status",
				Summary: "Change the status of a quote",
				Usage:   "storefront admin status <quote-id> <pending|in_progress|quoted|quote_issued|rejected>",
				Run: func(args []string) error {
					if err := requireArgs(args, 2, "storefront admin status <quote-id> <status>"); err != nil {
						return err
					}
					status := quote.Status(args[1])
					if !status.Valid() {
						return fmt.Errorf("unknown status %q", args[1])
					}
					return withSession(a, func() error {
						if err := a.api.UpdateStatus(a.ctx, args[0], status); err != nil {
							return err
						}
						fmt.Printf("Quote status updated to %s.\n", badge(string(status)))
						return nil
					})
				},
			},
			{
				Name:    "price",
				Summary: "Set unit prices of quote items",
				Usage:   "storefront admin price <quote-id> <item-id>=<unit-price>...",
				Run: func(args []string) error {
					if len(args) < 2 {
						return fmt.Errorf("usage: storefront admin price <quote-id> <item-id>=<unit-price>...")
					}
					return withSession(a, func() error {
						q, err := a.api.FindQuote(a.ctx, args[0])
						if err != nil {
							return err
						}
						lines, err := parsePriceArgs(q, args[1:])
						if err != nil {
							return err
						}
						if err := a.api.UpdatePricing(a.ctx, q.ID, lines); err != nil {
							return err
						}
						fmt.Println("Pricing saved.")
						return nil
					})
				},
			},
			{
				Name:    "issue",
				Summary: "Issue a quote to the customer, optionally pricing items first",
				Usage:   "storefront admin issue <quote-id> [<item-id>=<unit-price>...]",
				Run: func(args []string) error {
					if len(args) < 1 {
						return fmt.Errorf("usage: storefront admin issue <quote-id> [<item-id>=<unit-price>...]")
					}
					return withSession(a, func() error {
						q, err := a.api.FindQuote(a.ctx, args[0])
						if err != nil {
							return err
						}
						if !quote.Actions(q.Status).CanIssue {
							return fmt.Errorf("quote %s has already been issued", q.Title())
						}
						lines, err := parsePriceArgs(q, args[1:])
						if err != nil {
							return err
						}
						if err := a.api.IssueQuote(a.ctx, q.ID, lines); err != nil {
							return err
						}
						fmt.Println("Quote issued and sent to the customer.")
						return nil
					})
				},
			},
			adminProductCommand(a),
		},
	}
}

func adminLoginCommand(a *app) *Command {
	var email, passwordFile string
	return &Command{
		Name:    "login",
		Summary: "Log in as an admin",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVarP(&email, "email", "e", "", "admin email address")
			fs.StringVar(&passwordFile, "password-file", "", "read the password from a file instead of prompting")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "storefront admin login --email <email> [flags]"); err != nil {
				return err
			}
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			password, err := readPassword(passwordFile)
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}

			res, err := a.api.Login(a.ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.session.Login(a.ctx, res.Token, res.Admin); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s.\n", res.Admin.DisplayName())
			return nil
		},
	}
}

// readPassword reads the password from path, or prompts on the terminal
// when path is empty or "-".
func readPassword(path string) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal available for the password prompt (use --password-file)")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}

// requireSession fails unless an admin is logged in. Token validity is
// left to the API; see withSession.
func requireSession(a *app) error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// withSession runs fn for a logged in admin. A request the API rejects as
// unauthorized ends the session.
func withSession(a *app, fn func() error) error {
	if err := a.open(); err != nil {
		return err
	}
	if err := requireSession(a); err != nil {
		return err
	}
	err := fn()
	if errors.Is(err, api.ErrUnauthorized) {
		if lerr := a.session.Logout(a.ctx); lerr != nil {
			return lerr
		}
		return errors.Wrap(err, "your session has expired; run 'storefront admin login' again")
	}
	return err
}

func adminQuotesCommand(a *app) *Command {
	var status string
	return &Command{
		Name:    "quotes",
		Summary: "List quotes, newest first",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("quotes", pflag.ContinueOnError)
			fs.StringVar(&status, "status", "", "only show quotes with this status")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "storefront admin quotes [flags]"); err != nil {
				return err
			}
			return withSession(a, func() error {
				quotes, err := a.api.Quotes(a.ctx)
				if err != nil {
					return err
				}
				quotes = slices.DeleteFunc(quotes, func(q model.Quote) bool {
					return status != "" && q.Status != status
				})
				if len(quotes) == 0 {
					fmt.Println("No quotes found.")
					return nil
				}
				slices.SortStableFunc(quotes, func(x, y model.Quote) int {
					return y.CreatedAt.Compare(x.CreatedAt)
				})

				tw := newTable()
				fmt.Fprintln(tw, "ID\tQUOTE\tCUSTOMER\tITEMS\tTOTAL\tREQUESTED\tSTATUS")
				for _, q := range quotes {
					total := "-"
					if b := quote.QuoteTotals(q, a.vat); b.Priced > 0 {
						total = quote.FormatCurrency(b.Total)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", q.ID, q.Title(), q.GuestName, len(q.Items),
						total, q.CreatedAt.Format("2006-01-02"), badge(q.Status))
				}
				return tw.Flush()
			})
		},
	}
}

func printAdminQuote(a *app, q model.Quote) {
	fmt.Printf("%s  %s\n", heading(q.Title()), badge(q.Status))
	fmt.Printf("%s <%s>, requested %s\n", q.GuestName, q.GuestEmail, q.CreatedAt.Format("2 Jan 2006"))
	if q.Notes != "" {
		fmt.Printf("\n%s\n", q.Notes)
	}
	fmt.Println()

	tw := newTable()
	fmt.Fprintln(tw, "ITEM ID\tPRODUCT\tQUANTITY\tUNIT PRICE\tTOTAL\tNOTES")
	for _, item := range q.Items {
		unit, total := "-", "-"
		if item.UnitPrice.Valid {
			unit = quote.FormatCurrency(item.UnitPrice.Decimal)
			total = quote.FormatCurrency(quote.LineTotal(item.UnitPrice.Decimal, item.Quantity))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", item.ID, item.Title(), item.Quantity, unit, total, item.Message)
	}
	tw.Flush()

	totals := quote.QuoteTotals(q, a.vat)
	fmt.Printf("\nSubtotal %s, VAT (%s) %s, total %s\n", quote.FormatCurrency(totals.Subtotal),
		quote.FormatRate(totals.VATRate), quote.FormatCurrency(totals.VAT), heading(quote.FormatCurrency(totals.Total)))
	if totals.Unpriced > 0 {
		fmt.Println(muted(fmt.Sprintf("%d item(s) not priced yet.", totals.Unpriced)))
	}

	actions := quote.Actions(q.Status)
	if len(actions.Transitions) > 0 {
		names := make([]string, len(actions.Transitions))
		for i, s := range actions.Transitions {
			names[i] = string(s)
		}
		fmt.Println(muted("Status can change to: " + strings.Join(names, ", ")))
	}
}

// parsePriceArgs reads <item-id>=<unit-price> arguments. Quantities are
// taken from the quote.
func parsePriceArgs(q model.Quote, args []string) ([]api.PriceLine, error) {
	lines := make([]api.PriceLine, 0, len(args))
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%q: expected <item-id>=<unit-price>", arg)
		}
		i := slices.IndexFunc(q.Items, func(item model.QuoteItem) bool { return item.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("quote %s has no item %q", q.Title(), id)
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%q is not a valid price", raw)
		}
		lines = append(lines, api.PriceLine{ID: id, UnitPrice: quote.Round(price), Quantity: q.Items[i].Quantity})
	}
	return lines, nil
}
