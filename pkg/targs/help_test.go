// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"strings"
	"testing"
)

func TestHelp_RootListsCommands(t *testing.T) {
	p, _ := svcParser(t)
	h := p.Help()

	for _, want := range []string{
		"USAGE",
		"svcctl [flags] <command>",
		"COMMANDS",
		"svc",
		"status (st)",
		"-h, --help",
	} {
		if !strings.Contains(h, want) {
			t.Errorf("root help missing %q:\n%s", want, h)
		}
	}
}

func TestHelp_BranchShowsGroupFlagsAndDescription(t *testing.T) {
	p, _ := svcParser(t)
	h := p.Help("svc")

	for _, want := range []string{
		"svcctl svc - Manage services",
		"start",
		"Start a service",
		"-v, --verbose",
	} {
		if !strings.Contains(h, want) {
			t.Errorf("branch help missing %q:\n%s", want, h)
		}
	}
}

func TestHelp_LeafShowsArgumentsAndInheritedFlags(t *testing.T) {
	p, _ := svcParser(t)
	h := p.Help("svc", "start")

	for _, want := range []string{
		"svcctl svc start - Start a service",
		"[flags] <name>",
		"ARGUMENTS",
		"Service name",
		"GLOBAL OPTIONS",
		"-v, --verbose",
	} {
		if !strings.Contains(h, want) {
			t.Errorf("leaf help missing %q:\n%s", want, h)
		}
	}
}

func TestHelp_ChoicesAndDefaultsAnnotated(t *testing.T) {
	p, _ := svcParser(t)
	h := p.Help("status")

	if !strings.Contains(h, "(one of table, json)") {
		t.Errorf("help missing choice annotation:\n%s", h)
	}
	if !strings.Contains(h, "(default table)") {
		t.Errorf("help missing default annotation:\n%s", h)
	}
}

func TestHelp_HiddenCommandsOmitted(t *testing.T) {
	type visArgs struct{}
	type secretArgs struct{}
	p := MustNew(Branch(Commands(
		Sub("visible", Leaf[visArgs]()),
		Sub("secret", Leaf[secretArgs](), Hidden()),
	)), Prog("app"))

	h := p.Help()
	if strings.Contains(h, "secret") {
		t.Errorf("hidden command leaked into help:\n%s", h)
	}
	if !strings.Contains(h, "visible") {
		t.Errorf("visible command missing from help:\n%s", h)
	}
}
