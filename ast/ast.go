// Copyright 2017 by the Authors
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

// Package ast is a minimal, source-map-friendly AST: each Node carries its
// byte range and a list of children, enough to support the walks §4.1
// needs (locate containing node, enumerate lexical scope) without pulling
// in a full compiler front end — the real AST is produced by the external
// compiler and decoded from its JSON output into this shape.
package ast

// Node is one AST node. Kind names the Solidity-style grammar production
// ("FunctionDefinition", "VariableDeclaration", "FunctionCall", ...).
type Node struct {
	ID       int
	Kind     string
	Name     string // declared identifier, when the node has one
	Start    int    // byte offset
	Length   int    // byte length
	File     int    // source unit id
	Children []*Node

	// Attrs carries kind-specific decoded fields the compiler's JSON AST
	// provides (e.g. a FunctionDefinition's selector, a
	// VariableDeclaration's type string) without widening Node into a
	// per-kind union.
	Attrs map[string]interface{}
}

func (n *Node) End() int { return n.Start + n.Length }

// Contains reports whether the half-open byte range [start, start+length)
// fully contains [s, s+l).
func (n *Node) Contains(s, l int) bool {
	return s >= n.Start && s+l <= n.End()
}

// ContainsOffset reports whether the node's range contains the given byte
// offset.
func (n *Node) ContainsOffset(offset int) bool {
	return offset >= n.Start && offset < n.End()
}

// Visitor is called for each node during a Walk; returning false skips the
// node's children.
type Visitor func(n *Node) bool

// Walk performs a depth-first pre-order traversal, calling visit on every
// node reached; it does not recurse into a node's children when visit
// returns false for that node.
func Walk(n *Node, visit Visitor) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// FindContaining locates the node matching kind whose range contains
// [start, start+length), descending past earlier matches so the innermost
// (deepest) match wins (§4.1). kind == "*" matches any node.
func FindContaining(root *Node, start, length int, kind string) *Node {
	var best *Node
	Walk(root, func(n *Node) bool {
		if !n.Contains(start, length) {
			return false
		}
		if kind == "*" || n.Kind == kind {
			best = n
		}
		return true
	})
	return best
}

// ScopeEntry is one frame of a lexical scope chain: the enclosing node's
// id, this node's index among its parent's children, and its nesting
// depth from the root.
type ScopeEntry struct {
	ASTID      int
	ChildIndex int
	Depth      int
}

// ScopeAt enumerates, innermost first, every node whose byte range
// contains offset (§4.1 "Scope enumeration at byte offset").
func ScopeAt(root *Node, offset int) []ScopeEntry {
	var chain []ScopeEntry
	var walk func(n *Node, childIndex, depth int)
	walk = func(n *Node, childIndex, depth int) {
		if n == nil || !n.ContainsOffset(offset) {
			return
		}
		chain = append(chain, ScopeEntry{ASTID: n.ID, ChildIndex: childIndex, Depth: depth})
		for i, c := range n.Children {
			walk(c, i, depth+1)
		}
	}
	walk(root, 0, 0)
	// innermost first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ByID finds a node by id anywhere in the subtree rooted at root.
func ByID(root *Node, id int) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}
