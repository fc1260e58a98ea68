// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"strings"
)

// renderHelp builds the help text for one scope: usage line, command table
// for branches, positional and flag tables, and the inherited flags of every
// ancestor scope.
func renderHelp(s *scope) string {
	var b strings.Builder

	title := s.parser.prog
	if len(s.path) > 0 {
		title += " " + strings.Join(s.path, " ")
	}
	desc := s.desc
	if len(s.path) == 0 && s.parser.description != "" {
		desc = s.parser.description
	}
	if desc == "" && s.group != nil {
		desc = s.group.description
	}
	if desc != "" {
		fmt.Fprintf(&b, "%s - %s\n\n", title, desc)
	} else {
		fmt.Fprintf(&b, "%s\n\n", title)
	}
	fmt.Fprintf(&b, "USAGE\n  %s\n", usageLine(s, title))

	if s.group != nil {
		var rows [][2]string
		for _, name := range s.order {
			sub := s.subs[name]
			if sub.hidden {
				continue
			}
			left := name
			if len(sub.aliases) > 0 {
				left += " (" + strings.Join(sub.aliases, ", ") + ")"
			}
			rows = append(rows, [2]string{left, sub.help})
		}
		if len(rows) > 0 {
			b.WriteString("\nCOMMANDS\n")
			writeRows(&b, rows)
		}
	}

	if len(s.positionals) > 0 {
		b.WriteString("\nARGUMENTS\n")
		var rows [][2]string
		for _, f := range s.positionals {
			rows = append(rows, [2]string{f.Dest, flagDoc(f)})
		}
		writeRows(&b, rows)
	}

	b.WriteString("\nOPTIONS\n")
	rows := [][2]string{}
	for _, bf := range s.own {
		rows = append(rows, [2]string{flagLeft(bf.spec), flagDoc(bf.spec)})
	}
	rows = append(rows, [2]string{"-h, --help", "Show help and exit"})
	writeRows(&b, rows)

	var global [][2]string
	for anc := s.parent; anc != nil; anc = anc.parent {
		for _, bf := range anc.own {
			global = append(global, [2]string{flagLeft(bf.spec), flagDoc(bf.spec)})
		}
	}
	if len(global) > 0 {
		b.WriteString("\nGLOBAL OPTIONS\n")
		writeRows(&b, global)
	}
	return b.String()
}

func usageLine(s *scope, title string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(" [flags]")
	if s.group != nil {
		if s.fallback != nil {
			b.WriteString(" [<command>]")
		} else {
			b.WriteString(" <command>")
		}
		return b.String()
	}
	for _, f := range s.positionals {
		switch f.Card {
		case Single:
			fmt.Fprintf(&b, " <%s>", f.Dest)
		case OptionalSingle:
			fmt.Fprintf(&b, " [%s]", f.Dest)
		case ZeroOrMore:
			fmt.Fprintf(&b, " [%s ...]", f.Dest)
		case OneOrMore:
			fmt.Fprintf(&b, " <%s> [%s ...]", f.Dest, f.Dest)
		}
	}
	return b.String()
}

// flagLeft renders the left column of a flag row: shorthand, long names, and
// the value type for flags that take one.
func flagLeft(f FieldSpec) string {
	var b strings.Builder
	if f.Short != "" {
		b.WriteString("-" + f.Short + ", ")
	}
	names := f.FlagNames()
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("--" + n)
	}
	if !f.Bool {
		b.WriteString(" " + typeName(f.Elem))
	}
	return b.String()
}

// flagDoc renders the right column: help text plus choice and default notes.
func flagDoc(f FieldSpec) string {
	parts := []string{}
	if f.Help != "" {
		parts = append(parts, f.Help)
	}
	if len(f.Choices) > 0 {
		parts = append(parts, "(one of "+strings.Join(f.Choices, ", ")+")")
	}
	if f.HasDefault {
		parts = append(parts, fmt.Sprintf("(default %s)", f.Default))
	} else if !f.Positional && f.Required() {
		parts = append(parts, "(required)")
	}
	return strings.Join(parts, " ")
}

func writeRows(b *strings.Builder, rows [][2]string) {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	for _, r := range rows {
		if r[1] == "" {
			fmt.Fprintf(b, "  %s\n", r[0])
			continue
		}
		fmt.Fprintf(b, "  %-*s  %s\n", width, r[0], r[1])
	}
}
