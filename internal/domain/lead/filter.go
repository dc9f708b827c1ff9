package lead

import (
	"strings"
	"time"
)

// StatusAll disables the status predicate.
const StatusAll = "All"

// Filter is the list view's search state. Zero value matches everything.
type Filter struct {
	Query  string
	Status string
	From   *time.Time
	To     *time.Time
}

// Match reports whether l satisfies search AND status AND date range.
func (f Filter) Match(l Lead) bool {
	return f.matchQuery(l) && f.matchStatus(l) && f.matchRange(l)
}

func (f Filter) matchQuery(l Lead) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{l.AppID, l.CustomerName, l.CustomerMobile} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (f Filter) matchStatus(l Lead) bool {
	if f.Status == "" || f.Status == StatusAll {
		return true
	}
	return string(l.Status) == f.Status
}

func (f Filter) matchRange(l Lead) bool {
	if f.From != nil && l.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && l.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// Apply returns the leads matching f, preserving input order.
func Apply(leads []Lead, f Filter) []Lead {
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// CountByStatus tallies leads per status; every status is present in the result.
func CountByStatus(leads []Lead) map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, l := range leads {
		out[l.Status]++
	}
	return out
}
