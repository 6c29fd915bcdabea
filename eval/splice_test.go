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
	"testing"
)

func TestSpliceInsertsReferenceAndBody(t *testing.T) {
	src := "pragma solidity ^0.8.0;\ncontract C {\n  function f(uint x) public {\n    uint y = x + 1;\n  }\n}\n"
	plan := splicePlan{
		functionID:  "sdb_abc",
		expression:  "x*2",
		args:        []argBinding{{name: "x", typeName: "uint"}},
		currentLine: 4, // the `uint y = x + 1;` line
	}

	mutated, refLines, bodyLines := splice(src, plan)

	if refLines != 1 {
		t.Fatalf("expected 1 reference line inserted, got %d", refLines)
	}
	if bodyLines != 3 {
		t.Fatalf("expected 3 body lines inserted, got %d", bodyLines)
	}
	if !strings.Contains(mutated, "sdb_abc(x);") {
		t.Fatalf("expected reference call in mutated source:\n%s", mutated)
	}
	if !strings.Contains(mutated, "function sdb_abc(uint x) public returns (bool) {") {
		t.Fatalf("expected wrapper function in mutated source:\n%s", mutated)
	}
	if !strings.Contains(mutated, "return x*2;") {
		t.Fatalf("expected wrapper body in mutated source:\n%s", mutated)
	}

	lines := strings.Split(mutated, "\n")
	refIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "sdb_abc(x);") {
			refIdx = i
		}
	}
	declIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "uint y = x + 1;") {
			declIdx = i
		}
	}
	if refIdx == -1 || declIdx == -1 || refIdx >= declIdx {
		t.Fatalf("expected reference call spliced before the declaration line, ref=%d decl=%d", refIdx, declIdx)
	}
}

func TestTryFixReturnTypeParsesCompilerMessage(t *testing.T) {
	msg := `TypeError: Return argument type uint256 is not implicitly convertible to expected type (bool).`
	fix, newType, ok := tryFixReturnType(msg)
	if !ok {
		t.Fatalf("expected match")
	}
	if newType != "uint256" {
		t.Fatalf("expected uint256, got %s", newType)
	}
	src := "function sdb_x() public returns (bool) {\nreturn 1;\n}\n"
	fixed := fix(src, "sdb_x")
	if !strings.Contains(fixed, "returns (uint256)") {
		t.Fatalf("expected rewritten return type:\n%s", fixed)
	}
}

func TestTryFixReturnTypeNoMatch(t *testing.T) {
	if _, _, ok := tryFixReturnType("some unrelated compiler error"); ok {
		t.Fatalf("expected no match")
	}
}
