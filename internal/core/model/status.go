package model

import "strings"

// Status names recognised by the color table. Lookups are case-insensitive.
const (
	StatusToDo       = "to do"
	StatusOpen       = "open"
	StatusInProgress = "in progress"
	StatusInReview   = "in review"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
	StatusClosed     = "closed"
	StatusResolved   = "resolved"
	StatusCancelled  = "cancelled"
)

// DefaultColor is used for unknown or empty statuses.
const DefaultColor = "#9e9e9e"

var statusColors = map[string]string{
	StatusToDo:       "#90a4ae",
	StatusOpen:       "#64b5f6",
	StatusInProgress: "#1e88e5",
	StatusInReview:   "#8e24aa",
	StatusBlocked:    "#e53935",
	StatusDone:       "#43a047",
	StatusClosed:     "#2e7d32",
	StatusResolved:   "#00897b",
	StatusCancelled:  "#757575",
}

// StatusColor returns the hex color for a status.
func StatusColor(status string) string {
	if c, ok := statusColors[strings.ToLower(strings.TrimSpace(status))]; ok {
		return c
	}
	return DefaultColor
}
