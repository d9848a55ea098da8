// Package quote projects server-reported quote state into what the
// storefront shows: status badges, admin actions and price totals.
package quote

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Status is a quote lifecycle state as reported by the API.
type Status string

// Quote statuses. The normal flow is pending → in_progress → quoted →
// quote_issued; rejected can follow any non-terminal state.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusQuoted     Status = "quoted"
	StatusIssued     Status = "quote_issued"
	StatusRejected   Status = "rejected"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusQuoted, StatusIssued, StatusRejected}

// Color is the badge color category for a status.
type Color string

// Badge colors.
const (
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorRed    Color = "red"
	ColorGray   Color = "gray"
)

// Projection is how a status is displayed.
type Projection struct {
	Status Status
	Label  string
	Color  Color
	Known  bool
}

var projections = map[Status]Projection{
	StatusPending:    {Status: StatusPending, Label: "Pending", Color: ColorYellow, Known: true},
	StatusInProgress: {Status: StatusInProgress, Label: "In Progress", Color: ColorBlue, Known: true},
	StatusQuoted:     {Status: StatusQuoted, Label: "Quoted", Color: ColorGreen, Known: true},
	StatusIssued:     {Status: StatusIssued, Label: "Quote Issued", Color: ColorPurple, Known: true},
	StatusRejected:   {Status: StatusRejected, Label: "Rejected", Color: ColorRed, Known: true},
}

// forward is the normal successor of each non-terminal status.
var forward = map[Status]Status{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusQuoted,
	StatusQuoted:     StatusIssued,
}

// Project maps a raw status to its display. Unknown values get a neutral
// gray badge labelled with the raw value.
func Project(raw string) Projection {
	if p, ok := projections[Status(raw)]; ok {
		return p
	}
	return Projection{Status: Status(raw), Label: neutralLabel(raw), Color: ColorGray}
}

func neutralLabel(raw string) string {
	label := strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
	if label == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := projections[s]
	return ok
}

// Next returns the normal successor of s.
func Next(s Status) (Status, bool) {
	next, ok := forward[s]
	return next, ok
}

// IsTerminal reports whether s ends the normal flow.
func IsTerminal(s Status) bool {
	return s == StatusIssued || s == StatusRejected
}

// IsForward reports whether moving from one status to another follows the
// normal flow. The admin may still request any transition; this only
// informs the display.
func IsForward(from, to Status) bool {
	if !from.Valid() || IsTerminal(from) {
		return false
	}
	if to == StatusRejected {
		return true
	}
	for s, ok := Next(from); ok; s, ok = Next(s) {
		if s == to {
			return true
		}
	}
	return false
}

// AdminActions are the controls offered to an admin for a quote.
type AdminActions struct {
	CanUpdatePricing bool
	// CanIssue is false once the quote is issued so the server does not
	// send the quote twice.
	CanIssue bool
	// Transitions are the statuses the admin may request.
	Transitions []Status
}

// Actions returns the admin controls for a raw status.
func Actions(raw string) AdminActions {
	current := Status(raw)
	actions := AdminActions{
		CanUpdatePricing: true,
		CanIssue:         current != StatusIssued,
	}
	for _, s := range Statuses {
		if s != current {
			actions.Transitions = append(actions.Transitions, s)
		}
	}
	return actions
}

// CustomerView is what the tracking page offers for a status.
type CustomerView struct {
	Projection
	ShowDocument bool
	Refreshable  bool
}

// ForCustomer returns the tracking page view of a raw status.
func ForCustomer(raw string) CustomerView {
	p := Project(raw)
	return CustomerView{
		Projection:   p,
		ShowDocument: p.Status == StatusQuoted || p.Status == StatusIssued,
		Refreshable:  !IsTerminal(p.Status),
	}
}
