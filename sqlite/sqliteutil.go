// Package sqlite implements the focus journal over a local sqlite file.
package sqlite

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("record not found")

type Scannable interface {
	Scan(dest ...any) error
}

// GenerateParameters renders a "(?, ?, ...)" placeholder group for n args.
func GenerateParameters(n int) string {
	if n <= 0 {
		return "()"
	}
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", n), ", "))
	sb.WriteString(")")
	return sb.String()
}
