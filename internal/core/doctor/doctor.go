// Package doctor runs environment health checks for roost.
package doctor

import "context"

// Status is the outcome of a single check item.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

// String returns the display label for a status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "ok"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

// CheckItem is one line of a check's report.
type CheckItem struct {
	Label  string
	Status Status
	Detail string
}

// Result aggregates a check's items.
type Result struct {
	Name  string
	Items []CheckItem
}

// Failed reports whether any item failed.
func (r Result) Failed() bool {
	for _, item := range r.Items {
		if item.Status == StatusFail {
			return true
		}
	}
	return false
}

// Check is a single named health check.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll executes every check in order.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		results = append(results, c.Run(ctx))
	}
	return results
}
