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

package eval

import (
	"strings"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/model"
)

type splicePlan struct {
	functionID  string
	expression  string
	args        []argBinding
	currentLine int
}

// splice implements §4.6 step 5: insert a reference call immediately
// before the current line, and the wrapper function body immediately
// after the first line-break following `contract <Name>`. Returns the
// mutated source and the number of lines each splice inserted, so the
// caller can shift line offsets and breakpoints by the same deltas.
func splice(source string, p splicePlan) (mutated string, refLines, bodyLines int) {
	lines := strings.Split(source, "\n")

	argNames := make([]string, len(p.args))
	for i, a := range p.args {
		argNames[i] = a.name
	}
	refLine := p.functionID + "(" + strings.Join(argNames, ", ") + ");"

	insertAt := p.currentLine - 1
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(lines) {
		insertAt = len(lines)
	}
	withRef := make([]string, 0, len(lines)+1)
	withRef = append(withRef, lines[:insertAt]...)
	withRef = append(withRef, refLine)
	withRef = append(withRef, lines[insertAt:]...)

	contractHeaderLine := -1
	for i, l := range withRef {
		if strings.Contains(l, "contract ") {
			contractHeaderLine = i
			break
		}
	}
	if contractHeaderLine == -1 {
		contractHeaderLine = 0
	}

	argList := make([]string, len(p.args))
	for i, a := range p.args {
		argList[i] = a.String()
	}
	fnBody := []string{
		"function " + p.functionID + "(" + strings.Join(argList, ", ") + ") public returns (bool) {",
		"return " + p.expression + ";",
		"}",
	}

	withBody := make([]string, 0, len(withRef)+len(fnBody))
	withBody = append(withBody, withRef[:contractHeaderLine+1]...)
	withBody = append(withBody, fnBody...)
	withBody = append(withBody, withRef[contractHeaderLine+1:]...)

	return strings.Join(withBody, "\n"), 1, len(fnBody)
}

// tryFixReturnType implements §4.6 step 6: parse the compiler's
// diagnostic for the actual expression type and return a rewriter that
// substitutes it into the wrapper's `returns (bool)` clause.
func tryFixReturnType(compilerMessage string) (fix func(source, functionID string) string, newType string, ok bool) {
	m, err := returnTypeNotConvertible.FindStringMatch(compilerMessage)
	if err != nil || m == nil || len(m.Groups()) < 2 {
		return nil, "", false
	}
	actual := m.Groups()[1].String()
	return func(source, functionID string) string {
		return replaceReturnsClause(source, functionID, actual)
	}, actual, true
}

func replaceReturnsClause(source, functionID, newType string) string {
	marker := "function " + functionID + "("
	idx := strings.Index(source, marker)
	if idx < 0 {
		return source
	}
	openParen := strings.Index(source[idx:], "(")
	closeParen := strings.Index(source[idx+openParen:], ")")
	returnsIdx := strings.Index(source[idx+openParen+closeParen:], "returns (bool)")
	if returnsIdx < 0 {
		return source
	}
	absolute := idx + openParen + closeParen + returnsIdx
	return source[:absolute] + "returns (" + newType + ")" + source[absolute+len("returns (bool)"):]
}

// callEntryPC implements §4.6 step 8: locate the FunctionCall AST node
// whose callee is functionID, resolve its source location to an
// instruction index via the contract's runtime source map, and find the
// matching pc.
func callEntryPC(c *model.Contract, functionID string) (uint64, bool) {
	var found *ast.Node
	ast.Walk(c.AST, func(n *ast.Node) bool {
		if n.Kind == "FunctionCall" && n.Name == functionID {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return 0, false
	}

	callIdx := -1
	for i, loc := range c.RuntimeSourceMap {
		if loc.Start == found.Start && loc.Length == found.Length {
			callIdx = i
			break
		}
	}
	if callIdx < 0 {
		return 0, false
	}
	for pc, idx := range c.PCMap {
		if idx == callIdx {
			return pc, true
		}
	}
	return 0, false
}
