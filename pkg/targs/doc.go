// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package targs derives complete command-line parsers from plain Go struct
// types and dispatches matched commands to handlers that receive the parsed
// values as a typed struct.
//
// The library is built around a simple guarantee: if parser construction and
// binding succeed, every reachable command has exactly one handler of the
// correct type. A forgotten handler is caught by a single call to
// [Parser.Verify] (or implicitly by [Parser.Bind]) before any argument is
// parsed, never by a user stumbling into the broken command path at runtime.
//
// # Declaring arguments
//
// Arguments are declared as struct fields. The field's type shape determines
// its arity; tags control naming, help text, and defaults:
//
//	type RunArgs struct {
//	    Service string   `pos:"0" help:"Service to run"`
//	    Env     []string `flag:"env" short:"e" help:"Environment overrides"`
//	    Detach  bool     `flag:"detach" short:"d" help:"Run in background"`
//	    Retries *int     `help:"Retry count (unset = forever)"`
//	}
//
// A bare scalar is required. A pointer is optional and stays nil when the
// flag is absent. A slice accepts repeated values and decodes to an empty,
// non-nil slice when none are given. A bool is always a value-less toggle.
// Fields without a `pos` tag become --flags; the long name is derived from
// the field name (Retries becomes --retries, ControlURL becomes
// --control-url) unless a `flag` tag replaces it.
//
// # Command trees
//
// Commands are composed from [Leaf] and [Branch] nodes:
//
//	root := targs.Branch(targs.Commands(
//	    targs.Sub("run", targs.Leaf[RunArgs](), targs.SubHelp("Run a service")),
//	    targs.Sub("status", targs.Leaf[StatusArgs](), targs.Aliases("st")),
//	))
//
//	p := targs.MustNew(root, targs.Prog("svcctl"))
//	app := p.MustBind(
//	    targs.Bind(handleRun),
//	    targs.Bind(handleStatus),
//	)
//	app.Main()
//
// Shared flags are declared once as a struct embedded by each sibling's
// argument type and attached to the group with [*Group.Common]; they parse at
// any position on the command line and appear in help at the level where they
// were registered.
//
// # Raw value bags
//
// Token parsing is delegated to github.com/spf13/pflag. The parse result is a
// [RawValues] bag of raw string occurrences per field, which the validation
// layer coerces into the typed struct. [Decode] exposes that layer directly
// so a pre-existing parser can produce a bag and still get typed, validated
// results, and [ResolveUnion] selects among tagged variants of a shared bag.
package targs
