package reader

import (
	"fmt"
	"strings"
)

// Problem is a non-fatal defect found while reading a definition document.
// Problems accumulate over a pass instead of aborting it, so one broken
// element never hides the rest of the document.
type Problem struct {
	Message  string
	Resource string
	Node     string
	Cause    error
}

func (p Problem) Error() string {
	var b strings.Builder
	b.WriteString(p.Message)
	if p.Node != "" {
		fmt.Fprintf(&b, " in %s", p.Node)
	}
	if p.Resource != "" {
		fmt.Fprintf(&b, " from %s", p.Resource)
	}
	if p.Cause != nil {
		fmt.Fprintf(&b, ": %v", p.Cause)
	}
	return b.String()
}

func (p Problem) Unwrap() error { return p.Cause }

// Problems collects the problems of one registration pass, imports
// included. Not safe for concurrent use; a pass is single-threaded.
type Problems struct {
	items []Problem
}

func (ps *Problems) add(p Problem) {
	ps.items = append(ps.items, p)
}

// All returns the collected problems in discovery order.
func (ps *Problems) All() []Problem {
	out := make([]Problem, len(ps.items))
	copy(out, ps.items)
	return out
}

// Count returns the number of collected problems.
func (ps *Problems) Count() int {
	return len(ps.items)
}
