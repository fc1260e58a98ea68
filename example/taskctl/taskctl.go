// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command taskctl is a small task tracker showing how command trees, shared
// group flags, and typed handlers fit together.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/targsrun/targs/pkg/targs"
)

type rootCommon struct {
	Verbose bool `short:"v" help:"Chatty progress output"`
}

type addArgs struct {
	rootCommon
	Title    string        `pos:"0" help:"Task title"`
	Tags     []string      `short:"t" help:"Labels attached to the task"`
	Priority string        `default:"normal" choices:"low,normal,high" help:"Scheduling priority"`
	Due      time.Duration `default:"24h" help:"Time until the task is due"`
}

type listArgs struct {
	rootCommon
	Format string `default:"table" choices:"table,json" help:"Output format"`
	All    bool   `help:"Include completed tasks"`
}

type doneArgs struct {
	rootCommon
	IDs []int `pos:"0+" help:"Task ids to mark complete"`
}

func main() {
	root := targs.Branch(targs.Commands(
		targs.Sub("add", targs.Leaf[addArgs](), targs.SubHelp("Record a new task")),
		targs.Sub("list", targs.Leaf[listArgs](), targs.SubHelp("Show open tasks"), targs.Aliases("ls")),
		targs.Sub("done", targs.Leaf[doneArgs](), targs.SubHelp("Mark tasks complete")),
	).Common(rootCommon{}).Describe("Track tasks from the terminal"))

	p := targs.MustNew(root,
		targs.Prog("taskctl"),
		targs.Description("A tiny task tracker"),
	)
	app := p.MustBind(
		targs.Bind(handleAdd),
		targs.Bind(handleList),
		targs.Bind(handleDone),
	)
	app.Main()
}

func handleAdd(_ context.Context, a addArgs) error {
	if a.Verbose {
		fmt.Fprintf(os.Stderr, "adding %q due in %s\n", a.Title, a.Due)
	}
	line := fmt.Sprintf("[%s] %s", a.Priority, a.Title)
	if len(a.Tags) > 0 {
		line += " #" + strings.Join(a.Tags, " #")
	}
	fmt.Println(line)
	return nil
}

func handleList(_ context.Context, a listArgs) error {
	tasks := []map[string]any{
		{"id": 1, "title": "write release notes", "done": false},
		{"id": 2, "title": "rotate credentials", "done": true},
	}
	if !a.All {
		open := tasks[:0]
		for _, t := range tasks {
			if !t["done"].(bool) {
				open = append(open, t)
			}
		}
		tasks = open
	}
	if a.Format == "json" {
		return json.NewEncoder(os.Stdout).Encode(tasks)
	}
	for _, t := range tasks {
		fmt.Printf("%4d  %s\n", t["id"], t["title"])
	}
	return nil
}

func handleDone(_ context.Context, a doneArgs) error {
	for _, id := range a.IDs {
		fmt.Printf("done: %d\n", id)
	}
	return nil
}
