package model

import "strings"

// ValidationError reports structurally invalid inputs. It is raised before
// any search starts; no plan is produced alongside it.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid input"
	}
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

// Add appends a problem description.
func (e *ValidationError) Add(p string) { e.Problems = append(e.Problems, p) }

// HasProblems reports whether any problem was recorded.
func (e *ValidationError) HasProblems() bool { return len(e.Problems) > 0 }
