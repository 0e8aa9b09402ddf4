// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Source identifies one of the fixed credit bureau sources.
type Source string

// Known sources in enumeration order. The order is significant: it is the
// tie-break order for lowest/highest aggregation and the order in which
// components are reported.
const (
	SourceExperian   Source = "experian"
	SourceEquifax    Source = "equifax"
	SourceTransUnion Source = "transunion"
)

// Sources returns the full fixed source set in enumeration order.
func Sources() []Source {
	return []Source{SourceExperian, SourceEquifax, SourceTransUnion}
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	return s.Index() >= 0
}

// Index returns the enumeration position of s, or -1 if unknown.
func (s Source) Index() int {
	for i, known := range Sources() {
		if s == known {
			return i
		}
	}
	return -1
}

// ReportPrefix is the prefix used when synthesizing external report ids.
func (s Source) ReportPrefix() string {
	switch s {
	case SourceExperian:
		return "EXP"
	case SourceEquifax:
		return "EQF"
	case SourceTransUnion:
		return "TU"
	default:
		return "SRC"
	}
}

// DisplayName returns a human readable name.
func (s Source) DisplayName() string {
	switch s {
	case SourceExperian:
		return "Experian"
	case SourceEquifax:
		return "Equifax"
	case SourceTransUnion:
		return "TransUnion"
	default:
		return string(s)
	}
}

// ParseSource parses a source identifier case-insensitively.
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, raw)
	}
	return s, nil
}
