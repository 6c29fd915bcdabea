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

// Package breakpoint implements the line-keyed breakpoint registry of
// §4.4: resolving a user-facing (path, line) into one `(address, pc)`
// binding per deployed contract sharing that source file, and mirroring
// enable/disable state to the VM adapter.
package breakpoint

import (
	"sync/atomic"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/sourcemap"
)

// Breakpoint is one registered line breakpoint (§3 "Breakpoint").
type Breakpoint struct {
	ID       int
	Path     string
	Line     int // always expressed in the currently-mutated source
	Visible  bool
	Verified bool

	// HitCount counts how many times stopOnBreakpoint has matched this
	// breakpoint (§4.5), mirroring debugger.Breakpoint's hit counter.
	HitCount int

	// OriginalSource records whether the line passed to setBreakpoint was
	// expressed in the user's original source (for diagnostics only; the
	// stored Line is always translated to mutated-source terms).
	OriginalSource bool

	// Bindings holds one (address, pc) per contract it resolved against.
	Bindings []Binding
}

// Binding is one contract's resolution of a Breakpoint.
type Binding struct {
	ContractName string
	Address      [20]byte
	PC           uint64
}

// Sender is the subset of the VM adapter protocol the registry drives
// (§6 "sendBreakpoint"). Kept minimal and local to avoid an import cycle
// with vmadapter, which depends on model.
type Sender interface {
	SendBreakpoint(id int, address [20]byte, pc uint64, enabled bool, isRuntime bool)
}

// Notifier receives breakpointValidated UI events (§4.4).
type Notifier interface {
	BreakpointValidated(bp *Breakpoint)
}

var idCounter int64

func nextID() int { return int(atomic.AddInt64(&idCounter, 1)) }

// Registry owns every breakpoint, keyed by file path (§5 "Shared
// resources": breakpoint lists are exclusively owned by the engine).
type Registry struct {
	program  *model.Program
	sender   Sender
	notifier Notifier

	byPath map[string][]*Breakpoint
	byID   map[int]*Breakpoint
}

// New returns an empty Registry wired to program for resolution and
// sender/notifier for VM/UI side effects.
func New(program *model.Program, sender Sender, notifier Notifier) *Registry {
	return &Registry{
		program:  program,
		sender:   sender,
		notifier: notifier,
		byPath:   map[string][]*Breakpoint{},
		byID:     map[int]*Breakpoint{},
	}
}

// SetBreakpoint implements §4.4 setBreakpoint: translates an
// originalSource line forward through the file's lineOffsets, appends a
// fresh Breakpoint, and attempts resolution immediately.
func (r *Registry) SetBreakpoint(path string, line int, visible, originalSource bool) *Breakpoint {
	f := r.program.Files[path]
	resolvedLine := line
	if originalSource && f != nil {
		resolvedLine = f.TranslateOriginalLine(line)
	}

	bp := &Breakpoint{
		ID:             nextID(),
		Path:           path,
		Line:           resolvedLine,
		Visible:        visible,
		OriginalSource: originalSource,
	}
	r.byPath[path] = append(r.byPath[path], bp)
	r.byID[bp.ID] = bp

	r.resolve(bp)
	return bp
}

// ClearBreakpoint implements §4.4 clearBreakpoint: always sends
// enabled=false for every binding, even ones that never resolved to a
// pc, using the breakpoint's original id, then removes it.
func (r *Registry) ClearBreakpoint(id int) {
	bp, ok := r.byID[id]
	if !ok {
		return
	}
	r.disable(bp)
	r.removeFromPath(bp)
	delete(r.byID, id)
}

// ClearBreakpoints implements §4.4 clearBreakpoints(path): clears every
// breakpoint registered against path.
func (r *Registry) ClearBreakpoints(path string) {
	for _, bp := range append([]*Breakpoint{}, r.byPath[path]...) {
		r.disable(bp)
		delete(r.byID, bp.ID)
	}
	delete(r.byPath, path)
}

func (r *Registry) disable(bp *Breakpoint) {
	if len(bp.Bindings) == 0 {
		r.sender.SendBreakpoint(bp.ID, [20]byte{}, 0, false, true)
		return
	}
	for _, b := range bp.Bindings {
		r.sender.SendBreakpoint(bp.ID, b.Address, b.PC, false, true)
	}
}

func (r *Registry) removeFromPath(bp *Breakpoint) {
	list := r.byPath[bp.Path]
	for i, b := range list {
		if b.ID == bp.ID {
			r.byPath[bp.Path] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// VerifiedAt reports whether a verified breakpoint sits on path/line,
// satisfying stepengine.BreakpointSource for the "stopOnBreakpoint"
// predicate (§4.5).
func (r *Registry) VerifiedAt(path string, line int) bool {
	for _, bp := range r.byPath[path] {
		if bp.Verified && bp.Line == line {
			return true
		}
	}
	return false
}

// RecordHit increments every verified breakpoint at path/line, satisfying
// stepengine.BreakpointSource. Called once per stopOnBreakpoint match
// (§4.5), never on a miss.
func (r *Registry) RecordHit(path string, line int) {
	for _, bp := range r.byPath[path] {
		if bp.Verified && bp.Line == line {
			bp.HitCount++
		}
	}
}

// ReverifyForPath re-resolves every breakpoint registered against path,
// called after linkContractAddress binds a new address (§4.3, §7.3:
// "retry on every linkContractAddress").
func (r *Registry) ReverifyForPath(path string) {
	for _, bp := range r.byPath[path] {
		r.resolve(bp)
	}
}

// resolve implements §4.4's resolution step: for every contract sharing
// bp.Path with a bound address, AST-walk for a node starting within the
// breakpoint's line, convert its source location to an instruction
// index, and scan pcMap for the first pc mapping to that index.
func (r *Registry) resolve(bp *Breakpoint) {
	f, ok := r.program.Files[bp.Path]
	if !ok {
		return
	}
	lineStart, lineEnd := f.Breaks.LineRange(bp.Line)
	if lineEnd < 0 {
		lineEnd = len(f.Source)
	}

	var bindings []Binding
	for _, name := range f.ContractNames {
		c, ok := r.program.Contracts[name]
		if !ok || !c.Linked {
			continue
		}
		node := findNodeStartingInRange(c.AST, lineStart, lineEnd)
		if node == nil {
			continue
		}
		idx, ok := r.program.SourceMapIndex(name, node.Start, node.Length, sourcemap.JumpNone)
		if !ok {
			continue
		}
		pc, ok := pcForIndex(c.PCMap, idx)
		if !ok {
			continue
		}
		bindings = append(bindings, Binding{ContractName: name, Address: c.Address, PC: pc})
	}

	if len(bindings) == 0 {
		// §7.3 Resolution: keep verified-but-unbound, retried later.
		return
	}

	bp.Bindings = bindings
	bp.Verified = true
	for _, b := range bindings {
		r.sender.SendBreakpoint(bp.ID, b.Address, b.PC, true, true)
	}
	if r.notifier != nil {
		r.notifier.BreakpointValidated(bp)
	}
}

// findNodeStartingInRange looks for the innermost node whose Start falls
// within [lineStart, lineEnd), mirroring §4.4's "node whose source range
// starts at a byte offset within the target line's byte range".
func findNodeStartingInRange(root *ast.Node, lineStart, lineEnd int) *ast.Node {
	var best *ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Start >= lineStart && n.Start < lineEnd {
			best = n
		}
		return true
	})
	return best
}

func pcForIndex(pcMap map[uint64]int, idx int) (uint64, bool) {
	for pc, i := range pcMap {
		if i == idx {
			return pc, true
		}
	}
	return 0, false
}
