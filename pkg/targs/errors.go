// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"reflect"
	"strings"
)

// SpecError reports a mistake in an argument or command declaration: an
// unsupported field type, a colliding flag alias, an illegal default, or an
// incomplete binding set. It is returned from construction-time calls only
// and is never produced while parsing user input.
type SpecError struct {
	Problems []string
}

func (e *SpecError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid argument spec: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid argument spec (%d problems):\n - %s",
		len(e.Problems), strings.Join(e.Problems, "\n - "))
}

func specErrorf(format string, args ...any) *SpecError {
	return &SpecError{Problems: []string{fmt.Sprintf(format, args...)}}
}

// ParseError reports malformed, missing, or unknown tokens detected while
// parsing a concrete command line. Usage carries the help text for the scope
// where parsing failed, ready to be printed alongside the diagnostic.
type ParseError struct {
	Path  []string // command path where the error occurred, root first
	Msg   string   // one-line diagnostic
	Usage string   // rendered help for the failing scope
	Err   error    // underlying parser error, if any
}

func (e *ParseError) Error() string { return e.Msg }

func (e *ParseError) Unwrap() error { return e.Err }

// ProblemKind classifies a single validation finding.
type ProblemKind int

const (
	// ProblemMissing means a declared field had no entry in the raw bag.
	ProblemMissing ProblemKind = iota
	// ProblemUnexpected means the raw bag carried an entry no field declares.
	ProblemUnexpected
	// ProblemMissingValue means a required field was present but never set.
	ProblemMissingValue
	// ProblemType means a raw value could not be coerced to the field type.
	ProblemType
	// ProblemChoice means a value was outside the field's allowed choices.
	ProblemChoice
)

// Problem is one validation finding. A ValidationError carries every problem
// found in a bag, not just the first.
type Problem struct {
	Field      string
	Kind       ProblemKind
	Expected   string // expected type or choice list
	Actual     string // offending value or actual type
	Suggestion string // near-miss choice, if one is close enough
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemMissing:
		return fmt.Sprintf("missing argument %q", p.Field)
	case ProblemUnexpected:
		return fmt.Sprintf("unexpected extra argument %q", p.Field)
	case ProblemMissingValue:
		return fmt.Sprintf("argument %q requires %s", p.Field, p.Expected)
	case ProblemType:
		return fmt.Sprintf("argument %q: invalid value %q, expected %s", p.Field, p.Actual, p.Expected)
	case ProblemChoice:
		if p.Suggestion != "" {
			return fmt.Sprintf("argument %q: invalid choice %q (did you mean %q?), expected one of %s",
				p.Field, p.Actual, p.Suggestion, p.Expected)
		}
		return fmt.Sprintf("argument %q: invalid choice %q, expected one of %s", p.Field, p.Actual, p.Expected)
	}
	return fmt.Sprintf("argument %q: invalid", p.Field)
}

// ValidationError reports that a raw value bag does not match the field
// specification of the target type. It enumerates every missing, extra,
// mistyped, and out-of-choice field found in one pass.
type ValidationError struct {
	Type     reflect.Type
	Problems []Problem
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to validate arguments for %s:", e.Type.Name())
	if len(e.Problems) == 1 {
		b.WriteString(" " + e.Problems[0].String())
		return b.String()
	}
	for _, p := range e.Problems {
		b.WriteString("\n - " + p.String())
	}
	return b.String()
}
