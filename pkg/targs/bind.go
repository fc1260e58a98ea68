// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Binding associates an argument struct type with the handler invoked when
// parsing terminates in that type.
type Binding struct {
	typ    reflect.Type
	invoke func(context.Context, any) error
}

// Bind declares the handler for the argument type T.
func Bind[T any](fn func(context.Context, T) error) Binding {
	return Binding{
		typ: reflect.TypeFor[T](),
		invoke: func(ctx context.Context, v any) error {
			return fn(ctx, v.(T))
		},
	}
}

// App is a Parser joined with a complete set of handler bindings, ready to
// run command lines end to end.
type App struct {
	parser   *Parser
	bindings map[reflect.Type]Binding

	lazy     func() []Binding
	lazyOnce sync.Once
	lazyErr  error
}

// Bind pairs the parser with handlers and checks the pairing both ways:
// every terminal type of the command tree must have exactly one binding, and
// every binding must correspond to a terminal type. All offenders are listed
// in the returned SpecError, not just the first.
func (p *Parser) Bind(bindings ...Binding) (*App, error) {
	m, err := p.checkBindings(bindings)
	if err != nil {
		return nil, err
	}
	return &App{parser: p, bindings: m}, nil
}

// MustBind is like Bind but panics on an incomplete or mismatched set.
func (p *Parser) MustBind(bindings ...Binding) *App {
	app, err := p.Bind(bindings...)
	if err != nil {
		panic(err)
	}
	return app
}

// Verify runs the binding completeness check without constructing an App.
func (p *Parser) Verify(bindings ...Binding) error {
	_, err := p.checkBindings(bindings)
	return err
}

// BindLazy defers both handler construction and the completeness check to
// the first Run. Useful when handlers capture resources that are expensive
// to build at declaration time.
func (p *Parser) BindLazy(supply func() []Binding) *App {
	return &App{parser: p, lazy: supply}
}

func (p *Parser) checkBindings(bindings []Binding) (map[reflect.Type]Binding, error) {
	m := make(map[reflect.Type]Binding, len(bindings))
	var problems []string
	for _, b := range bindings {
		if _, dup := m[b.typ]; dup {
			problems = append(problems, fmt.Sprintf("type %s is bound twice", b.typ.Name()))
			continue
		}
		if _, reachable := p.leaves[b.typ]; !reachable {
			problems = append(problems, fmt.Sprintf("binding for %s matches no command", b.typ.Name()))
			continue
		}
		m[b.typ] = b
	}
	var unbound []string
	for t, path := range p.leaves {
		if _, ok := m[t]; !ok {
			if path == "" {
				path = "(root)"
			}
			unbound = append(unbound, fmt.Sprintf("command %q (type %s) has no binding", path, t.Name()))
		}
	}
	sort.Strings(unbound)
	problems = append(problems, unbound...)
	if len(problems) > 0 {
		return nil, &SpecError{Problems: problems}
	}
	return m, nil
}

func (a *App) resolveBindings() (map[reflect.Type]Binding, error) {
	if a.lazy == nil {
		return a.bindings, nil
	}
	a.lazyOnce.Do(func() {
		m, err := a.parser.checkBindings(a.lazy())
		a.bindings, a.lazyErr = m, err
	})
	return a.bindings, a.lazyErr
}
