// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/spf13/pflag"
)

// Parser owns an immutable command tree and its introspected argument specs.
// Construction validates the whole declaration eagerly: any SpecError is
// reported by New before a single token is ever parsed. A Parser is safe for
// concurrent use; per-invocation state lives in each Run call.
type Parser struct {
	root        *Node
	prog        string
	description string
	out         io.Writer
	errOut      io.Writer

	// ref is the reference compilation used for help, completion exposure,
	// and leaf collection. Dispatch compiles a fresh instance per call so
	// concurrent Runs never share pflag state.
	ref    *compiled
	leaves map[reflect.Type]string // leaf type -> representative command path
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// Prog sets the program name used in usage and help text.
// Defaults to the process name.
func Prog(name string) ParserOption {
	return func(p *Parser) { p.prog = name }
}

// Description sets the one-line program description shown in root help.
func Description(desc string) ParserOption {
	return func(p *Parser) { p.description = desc }
}

// Output sets the writer for help output. Defaults to os.Stdout.
func Output(w io.Writer) ParserOption {
	return func(p *Parser) { p.out = w }
}

// ErrOutput sets the writer for diagnostics. Defaults to os.Stderr.
func ErrOutput(w io.Writer) ParserOption {
	return func(p *Parser) { p.errOut = w }
}

// New builds a Parser for the given command tree. All declaration problems
// (unsupported field types, colliding aliases, illegal defaults, conflicting
// command names) are collected and returned as a single SpecError.
func New(root *Node, opts ...ParserOption) (*Parser, error) {
	if root == nil {
		return nil, specErrorf("command tree root must not be nil")
	}
	p := &Parser{
		root:   root,
		prog:   filepath.Base(os.Args[0]),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	c, err := p.compile()
	if err != nil {
		return nil, err
	}
	p.ref = c
	p.leaves = c.leaves
	return p, nil
}

// MustNew is like New but panics on a SpecError. Declarations are static, so
// a panic here is a programming mistake, not an input error.
func MustNew(root *Node, opts ...ParserOption) *Parser {
	p, err := New(root, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// LeafTypes returns the distinct argument struct types reachable as terminals
// of the command tree, sorted by type name. A type occurring at several tree
// positions is reported once.
func (p *Parser) LeafTypes() []reflect.Type {
	out := make([]reflect.Type, 0, len(p.leaves))
	for t := range p.leaves {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// FlagSet returns the compiled flag set for the given command path (no
// arguments for the root scope). It exposes the underlying parser primitive
// to host environments, e.g. shell completion engines.
func (p *Parser) FlagSet(path ...string) (*pflag.FlagSet, error) {
	s := p.ref.root
	for _, name := range path {
		child, ok := s.child(name)
		if !ok {
			return nil, fmt.Errorf("unknown command path %v", path)
		}
		s = child
	}
	return s.fs, nil
}

// VisitFlagSets calls fn for every scope of the compiled tree, root first,
// with the scope's command path and flag set.
func (p *Parser) VisitFlagSets(fn func(path []string, fs *pflag.FlagSet)) {
	var walk func(s *scope)
	walk = func(s *scope) {
		fn(s.path, s.fs)
		for _, name := range s.order {
			walk(s.commands[name])
		}
	}
	walk(p.ref.root)
}

// Help returns the rendered help text for the given command path.
func (p *Parser) Help(path ...string) string {
	s := p.ref.root
	for _, name := range path {
		child, ok := s.child(name)
		if !ok {
			break
		}
		s = child
	}
	return renderHelp(s)
}
