// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestNew_TreeDeclarationErrors(t *testing.T) {
	type common struct {
		Verbose bool `short:"v"`
	}
	type clashingLeaf struct {
		Verbose string `short:"v"` // same names, different type, not embedded
	}
	type aliasClashLeaf struct {
		Loud bool `flag:"verbose"` // collides with the group's --verbose
	}
	type plainLeaf struct{}
	type posCommon struct {
		Name string `pos:"0"`
	}

	tests := []struct {
		name   string
		root   *Node
		wantIn string
	}{
		{
			name: "flag redeclared in nested scope",
			root: Branch(Commands(
				Sub("run", Leaf[clashingLeaf]()),
			).Common(common{})),
			wantIn: "conflicts with inherited",
		},
		{
			name: "alias shadows an inherited flag",
			root: Branch(Commands(
				Sub("run", Leaf[aliasClashLeaf]()),
			).Common(common{})),
			wantIn: "already declared",
		},
		{
			name:   "optional group without common args",
			root:   Branch(Commands(Sub("run", Leaf[plainLeaf]())).Optional()),
			wantIn: "needs common arguments",
		},
		{
			name:   "reserved command name",
			root:   Branch(Commands(Sub("help", Leaf[plainLeaf]()))),
			wantIn: `"help" is reserved`,
		},
		{
			name: "duplicate command name",
			root: Branch(Commands(
				Sub("run", Leaf[plainLeaf]()),
				Sub("run", Leaf[plainLeaf]()),
			)),
			wantIn: "duplicate command",
		},
		{
			name: "alias collides with sibling command",
			root: Branch(Commands(
				Sub("run", Leaf[plainLeaf]()),
				Sub("exec", Leaf[plainLeaf](), Aliases("run")),
			)),
			wantIn: `alias "run"`,
		},
		{
			name:   "empty command group",
			root:   Branch(Commands()),
			wantIn: "no commands",
		},
		{
			name:   "positional in common args",
			root:   Branch(Commands(Sub("run", Leaf[plainLeaf]())).Common(posCommon{})),
			wantIn: "positional arguments are not allowed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.root, Prog("app"))
			se := asSpecError(t, err)
			if !strings.Contains(se.Error(), tt.wantIn) {
				t.Errorf("error %q does not contain %q", se.Error(), tt.wantIn)
			}
		})
	}
}

func TestNew_SiblingsMayReuseFlagNames(t *testing.T) {
	type pushArgs struct {
		Force bool
	}
	type pullArgs struct {
		Force bool
	}
	if _, err := New(Branch(Commands(
		Sub("push", Leaf[pushArgs]()),
		Sub("pull", Leaf[pullArgs]()),
	)), Prog("app")); err != nil {
		t.Fatalf("New() error = %v, want sibling scopes to be independent", err)
	}
}

func TestNew_SameLeafTypeAtTwoPositions(t *testing.T) {
	type echoArgs struct {
		Words []string `pos:"0*"`
	}
	p, err := New(Branch(Commands(
		Sub("say", Leaf[echoArgs]()),
		Sub("shout", Leaf[echoArgs]()),
	)), Prog("app"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if n := len(p.LeafTypes()); n != 1 {
		t.Errorf("LeafTypes() reported %d types, want 1", n)
	}
}

func TestVisitFlagSets_WalksEveryScope(t *testing.T) {
	p, _ := svcParser(t)
	var paths []string
	p.VisitFlagSets(func(path []string, fs *pflag.FlagSet) {
		paths = append(paths, strings.Join(path, " "))
		if fs.Lookup("help") == nil {
			t.Errorf("scope %q has no help flag", strings.Join(path, " "))
		}
	})
	want := []string{"", "svc", "svc start", "svc stop", "status"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("visited paths = %v, want %v", paths, want)
	}
}

func TestFlagSet_ExposesCompiledScope(t *testing.T) {
	p, _ := svcParser(t)
	fs, err := p.FlagSet("svc")
	if err != nil {
		t.Fatalf("FlagSet(svc) error = %v", err)
	}
	if fs.Lookup("verbose") == nil {
		t.Error("svc scope flag set is missing --verbose")
	}
	if _, err := p.FlagSet("nope"); err == nil {
		t.Error("FlagSet(nope) succeeded, want error")
	}
}
