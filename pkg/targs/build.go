// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
)

// compiled is one materialization of the command tree onto pflag flag sets.
// Dispatch builds a fresh compiled per invocation; the values accumulated in
// its argValues are therefore never shared across Runs.
type compiled struct {
	root   *scope
	leaves map[reflect.Type]string
}

// scope is one node of the compiled tree: a flag set plus either a command
// table (branch) or a terminal argument definition (leaf). Ancestor flags are
// re-registered hidden in every descendant scope so a global flag may appear
// anywhere in the token stream, before or after the command word.
type scope struct {
	parser *Parser
	parent *scope
	path   []string
	desc   string

	fs      *pflag.FlagSet
	helpVal *bool
	own     []*boundField
	bound   map[string]*boundField // field name -> binding, own fields only

	// branch state
	group    *Group
	commands map[string]*scope
	aliases  map[string]string // alias -> canonical command name
	order    []string          // declaration order of command names
	subs     map[string]*SubCommand
	common   *argDef
	fallback reflect.Type // common type when the group is optional

	// leaf state
	leafDef     *argDef
	positionals []FieldSpec
}

// boundField ties a field spec to the value its flags accumulate into.
type boundField struct {
	spec FieldSpec
	val  *argValue
}

// argValue is the pflag.Value behind every declared flag. It records raw
// string occurrences only; coercion happens later in the validator, so a
// single pass can report every problem at once.
type argValue struct {
	spec *FieldSpec
	vals []string
	set  bool
}

func (v *argValue) Set(s string) error {
	if v.spec.Card == ZeroOrMore || v.spec.Card == OneOrMore {
		v.vals = append(v.vals, s)
	} else {
		v.vals = []string{s} // last occurrence wins
	}
	v.set = true
	return nil
}

func (v *argValue) String() string { return strings.Join(v.vals, ",") }

func (v *argValue) Type() string {
	name := typeName(v.spec.Elem)
	if v.spec.Card == ZeroOrMore || v.spec.Card == OneOrMore {
		return name + "s"
	}
	return name
}

// toggleValue is the implied value of a bool flag given without an argument.
// A bool defaulting to true becomes a disable switch.
func (f FieldSpec) toggleValue() string {
	if f.HasDefault && f.Default == "true" {
		return "false"
	}
	return "true"
}

func (p *Parser) compile() (*compiled, error) {
	c := &compiled{leaves: make(map[reflect.Type]string)}
	var problems []string
	c.root = p.buildScope(nil, p.root, nil, make(map[string]string), c, &problems)
	if len(problems) > 0 {
		return nil, &SpecError{Problems: problems}
	}
	return c, nil
}

// buildScope compiles one tree node. seen maps every flag name and shorthand
// registered along this root-to-node chain to the path that claimed it; each
// branch child works on its own copy so sibling commands may reuse names.
func (p *Parser) buildScope(parent *scope, node *Node, path []string, seen map[string]string, c *compiled, problems *[]string) *scope {
	s := &scope{
		parser: p,
		parent: parent,
		path:   path,
		bound:  make(map[string]*boundField),
	}
	name := p.prog
	if len(path) > 0 {
		name = p.prog + " " + strings.Join(path, " ")
	}
	s.fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
	s.fs.SetOutput(io.Discard)
	s.helpVal = s.fs.BoolP("help", "h", false, "Show help and exit")

	// Ancestor flags, hidden. Each gets a fresh pflag.Flag bound to the same
	// argValue, so wherever the token lands in argv it reaches one place.
	for anc := parent; anc != nil; anc = anc.parent {
		for _, bf := range anc.own {
			registerFlag(s.fs, bf, true)
		}
	}

	if node.group != nil {
		p.buildBranch(s, node.group, seen, c, problems)
	} else {
		p.buildLeaf(s, node.leaf, seen, c, problems)
	}
	return s
}

func (p *Parser) buildBranch(s *scope, g *Group, seen map[string]string, c *compiled, problems *[]string) {
	// A branch must stop at the first non-flag token: that token is the
	// command word and everything after it belongs to the child scope.
	s.fs.SetInterspersed(false)
	s.group = g

	if g.common != nil {
		def, err := introspect(g.common)
		if err != nil {
			appendSpecProblems(problems, s.path, err)
		} else {
			s.common = def
			for _, f := range def.fields {
				if f.Positional {
					*problems = append(*problems, scoped(s.path, fmt.Sprintf(
						"common field %s: positional arguments are not allowed on command groups", f.Name)))
					continue
				}
				p.bindOwn(s, f, seen, problems)
			}
		}
	}
	if !g.required {
		if s.common == nil {
			*problems = append(*problems, scoped(s.path,
				"an optional command group needs common arguments to fall back to"))
		} else {
			s.fallback = s.common.typ
			c.addLeaf(s.common.typ, s.path)
		}
	}
	if len(g.subs) == 0 {
		*problems = append(*problems, scoped(s.path, "command group declares no commands"))
		return
	}

	s.commands = make(map[string]*scope, len(g.subs))
	s.aliases = make(map[string]string)
	s.subs = make(map[string]*SubCommand, len(g.subs))
	for _, sub := range g.subs {
		if sub.name == "help" {
			*problems = append(*problems, scoped(s.path, `command name "help" is reserved`))
			continue
		}
		if _, dup := s.commands[sub.name]; dup {
			*problems = append(*problems, scoped(s.path, fmt.Sprintf("duplicate command %q", sub.name)))
			continue
		}
		if prev, dup := s.aliases[sub.name]; dup {
			*problems = append(*problems, scoped(s.path, fmt.Sprintf(
				"command %q collides with an alias of %q", sub.name, prev)))
			continue
		}
		childSeen := make(map[string]string, len(seen))
		for k, v := range seen {
			childSeen[k] = v
		}
		child := p.buildScope(s, sub.node, append(append([]string(nil), s.path...), sub.name), childSeen, c, problems)
		child.desc = sub.help
		s.commands[sub.name] = child
		s.subs[sub.name] = sub
		s.order = append(s.order, sub.name)
		for _, alias := range sub.aliases {
			if alias == "help" {
				*problems = append(*problems, scoped(s.path, `alias "help" is reserved`))
				continue
			}
			if _, dup := s.commands[alias]; dup {
				*problems = append(*problems, scoped(s.path, fmt.Sprintf(
					"alias %q of command %q collides with a command name", alias, sub.name)))
				continue
			}
			if prev, dup := s.aliases[alias]; dup {
				*problems = append(*problems, scoped(s.path, fmt.Sprintf(
					"alias %q claimed by both %q and %q", alias, prev, sub.name)))
				continue
			}
			s.aliases[alias] = sub.name
		}
	}
}

func (p *Parser) buildLeaf(s *scope, leaf reflect.Type, seen map[string]string, c *compiled, problems *[]string) {
	def, err := introspect(leaf)
	if err != nil {
		appendSpecProblems(problems, s.path, err)
		return
	}
	s.leafDef = def

	inherited := make(map[string]FieldSpec)
	for anc := s.parent; anc != nil; anc = anc.parent {
		for _, bf := range anc.own {
			if _, ok := inherited[bf.spec.Name]; !ok {
				inherited[bf.spec.Name] = bf.spec
			}
		}
	}
	// Positionals consume tokens in pos-tag order, which may differ from the
	// struct's declaration order.
	for _, idx := range def.positionals {
		s.positionals = append(s.positionals, def.fields[idx])
	}
	for _, f := range def.fields {
		if f.Positional {
			continue
		}
		if up, ok := inherited[f.Name]; ok {
			// The leaf repeats a field its embedded common struct declared.
			// The ancestor already owns the flag; the shapes must agree.
			if up.Type != f.Type {
				*problems = append(*problems, scoped(s.path, fmt.Sprintf(
					"field %s: type %s conflicts with inherited declaration of type %s",
					f.Name, f.Type, up.Type)))
			}
			continue
		}
		p.bindOwn(s, f, seen, problems)
	}
	c.addLeaf(leaf, s.path)
}

// bindOwn registers a flag field on this scope, checking every long name and
// the shorthand against the names already taken along the chain. pflag panics
// on redefinition, so collisions must be caught here first.
func (p *Parser) bindOwn(s *scope, f FieldSpec, seen map[string]string, problems *[]string) {
	names := f.FlagNames()
	clean := true
	for _, n := range names {
		if holder, dup := seen["--"+n]; dup {
			*problems = append(*problems, scoped(s.path, fmt.Sprintf(
				"field %s: flag --%s already declared by %s", f.Name, n, holder)))
			clean = false
		}
	}
	if f.Short != "" {
		if f.Short == "h" {
			*problems = append(*problems, scoped(s.path, fmt.Sprintf(
				"field %s: shorthand -h is reserved for help", f.Name)))
			clean = false
		} else if holder, dup := seen["-"+f.Short]; dup {
			*problems = append(*problems, scoped(s.path, fmt.Sprintf(
				"field %s: shorthand -%s already declared by %s", f.Name, f.Short, holder)))
			clean = false
		}
	}
	if !clean {
		return
	}
	holder := "field " + f.Name
	if len(s.path) > 0 {
		holder += " (" + strings.Join(s.path, " ") + ")"
	}
	for _, n := range names {
		seen["--"+n] = holder
	}
	if f.Short != "" {
		seen["-"+f.Short] = holder
	}

	bf := &boundField{spec: f}
	bf.val = &argValue{spec: &bf.spec}
	registerFlag(s.fs, bf, false)
	s.own = append(s.own, bf)
	s.bound[f.Name] = bf
}

// registerFlag materializes a bound field on fs. The first flag name is the
// primary; further names register as hidden aliases of the same value. Bool
// fields take an implied value so the bare flag toggles.
func registerFlag(fs *pflag.FlagSet, bf *boundField, hidden bool) {
	names := bf.spec.FlagNames()
	short := bf.spec.Short
	fs.VarP(bf.val, names[0], short, bf.spec.Help)
	for _, n := range names[1:] {
		fs.Var(bf.val, n, bf.spec.Help)
		fs.Lookup(n).Hidden = true
	}
	if bf.spec.Bool {
		implied := bf.spec.toggleValue()
		for _, n := range names {
			fs.Lookup(n).NoOptDefVal = implied
		}
	}
	if hidden {
		for _, n := range names {
			fs.Lookup(n).Hidden = true
		}
	}
}

func (c *compiled) addLeaf(t reflect.Type, path []string) {
	if _, ok := c.leaves[t]; !ok {
		c.leaves[t] = strings.Join(path, " ")
	}
}

// child resolves a command word at this branch, following aliases.
func (s *scope) child(name string) (*scope, bool) {
	if canonical, ok := s.aliases[name]; ok {
		name = canonical
	}
	sc, ok := s.commands[name]
	return sc, ok
}

// find returns the own or inherited binding for a field name.
func (s *scope) find(name string) *boundField {
	for sc := s; sc != nil; sc = sc.parent {
		if bf, ok := sc.bound[name]; ok {
			return bf
		}
	}
	return nil
}

func scoped(path []string, msg string) string {
	if len(path) == 0 {
		return msg
	}
	return strings.Join(path, " ") + ": " + msg
}

// appendSpecProblems folds a nested introspection error into the problem list.
func appendSpecProblems(problems *[]string, path []string, err error) {
	var se *SpecError
	if errors.As(err, &se) {
		for _, p := range se.Problems {
			*problems = append(*problems, scoped(path, p))
		}
		return
	}
	*problems = append(*problems, scoped(path, err.Error()))
}
