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

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/uiproto"
)

var (
	stoppedColor  = color.New(color.FgYellow, color.Bold)
	runningColor  = color.New(color.FgGreen, color.Bold)
	hitColor      = color.New(color.FgRed, color.Bold)
	historyPrompt = ".sdbrepl_history"
)

// startSession dials addr's UI channel, wires a uiClient over it, and
// drives an interactive command loop until the user quits or the
// connection drops (§6, §2 C8).
func startSession(addr string) error {
	url := addr
	if !strings.Contains(url, "://") {
		url = "ws://" + url
	}
	channel, err := transport.DialChannel(url)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer channel.Close()

	running := false
	client := newUIClient(channel, func(event string, args []interface{}) {
		switch event {
		case "stopOnEntry", "stopOnStepOver", "stopOnStepIn", "stopOnStepOut":
			running = false
			stoppedColor.Printf("\n[stopped] %s\n", event)
		case "stopOnBreakpoint":
			running = false
			hitColor.Printf("\n[breakpoint hit]\n")
		case "breakpointValidated":
			fmt.Println("\n[breakpoint validated]")
		case "exception":
			hitColor.Printf("\n[exception] %v\n", args)
		case "end":
			fmt.Println("\n[session ended]")
		}
	})

	if client.ping(1 * time.Second) {
		runningColor.Println("connected:", addr)
	} else {
		fmt.Println("connected (no pong within 1s):", addr)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	if f, err := os.Open(historyPrompt); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPrompt); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		status := "running"
		if !running {
			status = "stopped"
		}
		prompt := fmt.Sprintf("sdb(%s)> ", status)
		input, err := line.Prompt(prompt)
		if err != nil {
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := dispatchCommand(client, input, &running); quit {
			return nil
		}
	}
}

// dispatchCommand interprets one REPL line against the UI protocol's
// commands, reporting true when the user asked to exit.
func dispatchCommand(client *uiClient, input string, running *bool) bool {
	fields := strings.SplitN(input, " ", 2)
	cmd := fields[0]
	var arg string
	if len(fields) > 1 {
		arg = strings.TrimSpace(fields[1])
	}

	switch cmd {
	case "exit", "quit", "q":
		return true
	case "continue", "c":
		*running = true
		if err := client.call(uiproto.RequestUIAction, uiproto.UIActionRequest{Action: uiproto.ActionContinue}, nil); err != nil {
			fmt.Println("error:", err)
		}
	case "step", "over", "next", "n":
		*running = true
		if err := client.call(uiproto.RequestUIAction, uiproto.UIActionRequest{Action: uiproto.ActionStepOver}, nil); err != nil {
			fmt.Println("error:", err)
		}
	case "stepin", "in", "s":
		*running = true
		if err := client.call(uiproto.RequestUIAction, uiproto.UIActionRequest{Action: uiproto.ActionStepIn}, nil); err != nil {
			fmt.Println("error:", err)
		}
	case "stepout", "out", "o":
		*running = true
		if err := client.call(uiproto.RequestUIAction, uiproto.UIActionRequest{Action: uiproto.ActionStepOut}, nil); err != nil {
			fmt.Println("error:", err)
		}
	case "break", "b":
		path, lineNo, ok := parseFileLine(arg)
		if !ok {
			fmt.Println("usage: break <file>:<line>")
			return false
		}
		var resp uiproto.BreakpointResponse
		if err := client.call(uiproto.RequestSetBreakpoint, uiproto.SetBreakpointRequest{Path: path, Line: lineNo}, &resp); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Printf("breakpoint #%d at %s:%d (verified=%v)\n", resp.ID, resp.Path, resp.Line, resp.Verified)
	case "clear":
		if err := client.call(uiproto.RequestClearBreakpoints, uiproto.ClearBreakpointsRequest{Path: arg}, nil); err != nil {
			fmt.Println("error:", err)
		}
	case "print", "p":
		var resp uiproto.EvaluateResponse
		if err := client.call(uiproto.RequestEvaluate, uiproto.EvaluateRequest{Expression: arg, Context: "repl"}, &resp); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println(resp.Result)
	case "stack", "bt":
		var resp uiproto.StackResponse
		if err := client.call(uiproto.RequestStack, uiproto.StackRequest{}, &resp); err != nil {
			fmt.Println("error:", err)
			return false
		}
		for i, fr := range resp.Frames {
			fmt.Printf("#%d %s at %s:%d\n", i, fr.FunctionName, fr.File, fr.Line)
		}
	case "vars":
		var resp uiproto.VariablesResponse
		if err := client.call(uiproto.RequestVariables, uiproto.VariablesRequest{}, &resp); err != nil {
			fmt.Println("error:", err)
			return false
		}
		for _, v := range resp.Variables {
			fmt.Printf("%s %s = %s\n", v.Type, v.Name, v.Value)
		}
	case "help", "?":
		printHelp()
	default:
		fmt.Println("unknown command; type 'help' for a list")
	}
	return false
}

func parseFileLine(arg string) (path string, line int, ok bool) {
	idx := strings.LastIndex(arg, ":")
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(arg[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return arg[:idx], n, true
}

func printHelp() {
	fmt.Println(`commands:
  continue, c              resume to next breakpoint
  step, over, n             step over
  stepin, in, s              step into
  stepout, out, o            step out
  break <file>:<line>, b    set a breakpoint
  clear <file>               clear breakpoints in a file
  print <expr>, p            evaluate an expression in the current frame
  stack, bt                  print the call stack
  vars                        print in-scope variables
  exit, quit, q               leave the REPL`)
}
