// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"reflect"
)

// Node is one position in the command tree: either a leaf bound to an
// argument struct type, or a branch delegating to a named group of
// sub-commands. The two are mutually exclusive by construction, mirroring the
// rule that a single node cannot host two independent discriminators.
type Node struct {
	leaf  reflect.Type
	group *Group
}

// Leaf creates a terminal node whose arguments are described by T.
func Leaf[T any]() *Node {
	return &Node{leaf: reflect.TypeFor[T]()}
}

// Branch creates a node that delegates to a group of named sub-commands.
func Branch(g *Group) *Node {
	return &Node{group: g}
}

// Group is an ordered set of sibling sub-commands sharing one discriminator
// token, optionally carrying common arguments registered at the group's level.
type Group struct {
	subs        []*SubCommand
	common      reflect.Type
	required    bool
	description string
}

// Commands builds a Group from its sub-command entries. The group is
// required by default: a command token must be supplied.
func Commands(subs ...*SubCommand) *Group {
	return &Group{subs: subs, required: true}
}

// Common attaches shared arguments, declared by the prototype's struct type,
// to the group. They are registered once at this level and are expected to be
// embedded by each sub-command's own argument type.
func (g *Group) Common(prototype any) *Group {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	g.common = t
	return g
}

// Optional marks the group as selectable: when no command token is supplied,
// the group's common arguments become the terminal result instead of an
// error. Requires Common.
func (g *Group) Optional() *Group {
	g.required = false
	return g
}

// Describe sets the help description shown for the group's command list.
func (g *Group) Describe(desc string) *Group {
	g.description = desc
	return g
}

// SubCommand is one named entry of a Group.
type SubCommand struct {
	name    string
	node    *Node
	help    string
	aliases []string
	hidden  bool
}

// SubOption configures a SubCommand entry.
type SubOption func(*SubCommand)

// Sub declares a sub-command entry selecting the given node.
func Sub(name string, node *Node, opts ...SubOption) *SubCommand {
	s := &SubCommand{name: name, node: node}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubHelp sets the one-line description shown in the parent's command list.
func SubHelp(help string) SubOption {
	return func(s *SubCommand) { s.help = help }
}

// Aliases declares additional accepted tokens resolving to the same entry.
func Aliases(aliases ...string) SubOption {
	return func(s *SubCommand) { s.aliases = aliases }
}

// Hidden hides the entry from help output; it still parses and dispatches.
func Hidden() SubOption {
	return func(s *SubCommand) { s.hidden = true }
}
