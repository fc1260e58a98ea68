// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// RawValue is the uncoerced command-line occurrence of one argument: every
// raw string supplied for it, and whether it appeared at all. Defaults are
// not applied here; an unset flag with a default has Set == false.
type RawValue struct {
	Values []string
	Set    bool
}

// First returns the single raw string of a scalar value, or "" when unset.
func (r RawValue) First() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// RawValues maps canonical argument names to their raw occurrences. It is the
// untyped intermediate between token parsing and struct validation, and the
// input accepted by Decode and ResolveUnion.
type RawValues map[string]RawValue

// invocation is the outcome of walking argv through the compiled tree: the
// selected terminal type, its definition, and the raw value bag, or rendered
// help text when a help flag or the help command was hit.
type invocation struct {
	path []string
	leaf reflect.Type
	def  *argDef
	raw  RawValues
	help string
}

// resolve descends the compiled tree over argv. Each branch scope parses up
// to its command word, the matching child continues with the remainder, and
// the terminal scope binds positionals and collects the raw bag.
func (c *compiled) resolve(argv []string) (*invocation, error) {
	s := c.root
	rest := argv
	for {
		if err := s.fs.Parse(rest); err != nil {
			// pflag's diagnostic wording is propagated unchanged.
			return nil, &ParseError{Path: s.path, Msg: err.Error(), Usage: renderHelp(s), Err: err}
		}
		if *s.helpVal {
			return &invocation{help: renderHelp(s)}, nil
		}
		rest = s.fs.Args()

		if s.group == nil {
			return s.finishLeaf(rest)
		}
		if len(rest) == 0 {
			if s.fallback != nil {
				return &invocation{
					path: s.path,
					leaf: s.fallback,
					def:  s.common,
					raw:  s.collectFlags(s.common),
				}, nil
			}
			return nil, &ParseError{
				Path:  s.path,
				Msg:   "missing command: expected one of " + strings.Join(s.order, ", "),
				Usage: renderHelp(s),
			}
		}
		word := rest[0]
		if word == "help" {
			// "help [command ...]" renders the deepest resolvable scope.
			target := s
			for _, tok := range rest[1:] {
				child, ok := target.child(tok)
				if !ok {
					break
				}
				target = child
			}
			return &invocation{help: renderHelp(target)}, nil
		}
		child, ok := s.child(word)
		if !ok {
			return nil, s.unknownCommand(word)
		}
		s = child
		rest = rest[1:]
	}
}

// finishLeaf distributes the remaining non-flag tokens over the leaf's
// positional arguments and assembles the raw bag.
func (s *scope) finishLeaf(rest []string) (*invocation, error) {
	raw := s.collectFlags(s.leafDef)

	required, variadic := 0, false
	for _, f := range s.positionals {
		switch f.Card {
		case Single, OneOrMore:
			required++
		}
		if f.Card == ZeroOrMore || f.Card == OneOrMore {
			variadic = true
		}
	}
	if len(rest) < required {
		return nil, &ParseError{
			Path:  s.path,
			Msg:   fmt.Sprintf("expected %s, got %d", countNoun(required, len(s.positionals), variadic), len(rest)),
			Usage: renderHelp(s),
		}
	}
	// Optional singles consume tokens left over after every required slot is
	// fed. A variadic positional is always last and swallows the remainder.
	spare := len(rest) - required
	for _, f := range s.positionals {
		var take int
		switch f.Card {
		case Single:
			take = 1
		case OptionalSingle:
			if spare > 0 {
				take, spare = 1, spare-1
			}
		case ZeroOrMore, OneOrMore:
			take = len(rest)
		}
		vals := rest[:take]
		rest = rest[take:]
		raw[f.Dest] = RawValue{Values: append([]string(nil), vals...), Set: len(vals) > 0}
	}
	if len(rest) > 0 {
		return nil, &ParseError{
			Path:  s.path,
			Msg:   "unrecognized arguments: " + strings.Join(rest, " "),
			Usage: renderHelp(s),
		}
	}
	return &invocation{path: s.path, leaf: s.leafDef.typ, def: s.leafDef, raw: raw}, nil
}

// collectFlags snapshots the accumulated flag values for every non-positional
// field of def, walking the scope chain for inherited bindings.
func (s *scope) collectFlags(def *argDef) RawValues {
	raw := make(RawValues, len(def.fields))
	for _, f := range def.fields {
		if f.Positional {
			continue
		}
		bf := s.find(f.Name)
		if bf == nil {
			continue
		}
		raw[f.Dest] = RawValue{
			Values: append([]string(nil), bf.val.vals...),
			Set:    bf.val.set,
		}
	}
	return raw
}

func (s *scope) unknownCommand(word string) error {
	valid := append([]string(nil), s.order...)
	for alias := range s.aliases {
		valid = append(valid, alias)
	}
	sort.Strings(valid)
	msg := fmt.Sprintf("unknown command %q", word)
	if hit := closestName(word, valid); hit != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", hit)
	}
	msg += ". Valid commands: " + strings.Join(s.order, ", ")
	return &ParseError{Path: s.path, Msg: msg, Usage: renderHelp(s)}
}

// closestName returns the candidate within edit distance max(2, len/3) of
// name, or "" when nothing is close enough.
func closestName(name string, candidates []string) string {
	threshold := len(name) / 3
	if threshold < 2 {
		threshold = 2
	}
	best, bestDist := "", threshold+1
	for _, c := range candidates {
		if d := levenshtein.Distance(name, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func countNoun(required, total int, variadic bool) string {
	switch {
	case variadic:
		return fmt.Sprintf("at least %d argument(s)", required)
	case required != total:
		return fmt.Sprintf("between %d and %d argument(s)", required, total)
	default:
		return fmt.Sprintf("%d argument(s)", required)
	}
}
