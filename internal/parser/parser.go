// Package parser defines the contract for turning raw input bytes into a
// records.Set.
package parser

import (
	"io"

	"salesetl/pkg/records"
)

// Parser reads one complete dataset from r.
type Parser interface {
	Parse(r io.Reader) (*records.Set, error)
}
