// Copyright 2018 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

// sdbrepl is an interactive client of a running sdb's UI channel,
// demonstrating the Client facade end to end: continue, step, breakpoints
// and print against a live session (§2 C8, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/core-coin/sdb/config"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&attachCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// runCmd and attachCmd both connect to an already-listening sdb UI
// channel; they are kept as distinct subcommands (run: "I expect to be
// the one spawning sdb", attach: "sdb is already up") even though today
// they share the same dial-and-loop implementation, mirroring how the
// teacher's cmd/cvm separates "run" from its other top-level verbs even
// where the underlying plumbing is shared.
type runCmd struct{ addr string }

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "connect to a freshly started sdb instance and enter the REPL" }
func (*runCmd) Usage() string {
	return "run [-addr host:port]\n  Connect to sdb's UI channel and start an interactive session.\n"
}
func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", config.Default().UIListenAddr, "sdb UI channel address")
}
func (c *runCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runREPL(c.addr)
}

type attachCmd struct{ addr string }

func (*attachCmd) Name() string     { return "attach" }
func (*attachCmd) Synopsis() string { return "attach to an sdb instance that is already running" }
func (*attachCmd) Usage() string {
	return "attach [-addr host:port]\n  Connect to a running sdb's UI channel and start an interactive session.\n"
}
func (c *attachCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", config.Default().UIListenAddr, "sdb UI channel address")
}
func (c *attachCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runREPL(c.addr)
}

// replCmd is the bare entrypoint for users who just want the interactive
// loop against the default address without naming run/attach.
type replCmd struct{ addr string }

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive debugger session (default address)" }
func (*replCmd) Usage() string {
	return "repl [-addr host:port]\n  Shorthand for `attach` against the default UI address.\n"
}
func (c *replCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", config.Default().UIListenAddr, "sdb UI channel address")
}
func (c *replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runREPL(c.addr)
}

func runREPL(addr string) subcommands.ExitStatus {
	if err := startSession(addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
