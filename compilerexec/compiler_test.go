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

package compilerexec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/core-coin/sdb/ast"
)

// fakeCompiler writes a shell script standing in for a real compiler
// binary: it ignores its stdin entirely and prints a fixed JSON payload,
// enough to exercise Exec's stdout-decoding path without a real toolchain.
func fakeCompiler(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fakecompiler.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake compiler: %v", err)
	}
	return path
}

func TestCompileDecodesSuccessfulOutput(t *testing.T) {
	bin := fakeCompiler(t, `echo '{"creationCode":"0x6001","runtimeCode":"0x6002","runtimeSourceMap":"0:1:0:-","ast":{"id":0,"kind":"ContractDefinition"}}'`)
	e := New(bin)

	got, err := e.Compile("/src", map[string]string{"c.sol": "contract C {}"}, "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.CreationCode) != 2 || got.CreationCode[0] != 0x60 || got.CreationCode[1] != 0x01 {
		t.Fatalf("unexpected creation code: %x", got.CreationCode)
	}
	if len(got.RuntimeCode) != 2 || got.RuntimeCode[0] != 0x60 || got.RuntimeCode[1] != 0x02 {
		t.Fatalf("unexpected runtime code: %x", got.RuntimeCode)
	}
	if got.RuntimeSrcMap != "0:1:0:-" {
		t.Fatalf("unexpected source map: %q", got.RuntimeSrcMap)
	}
	node, ok := got.AST.(*ast.Node)
	if !ok || node.Kind != "ContractDefinition" {
		t.Fatalf("unexpected AST: %+v", got.AST)
	}
}

func TestCompilePropagatesCompilerError(t *testing.T) {
	bin := fakeCompiler(t, `echo '{"error":"ParserError: unexpected token"}'`)
	e := New(bin)

	_, err := e.Compile("/src", map[string]string{"c.sol": "bad"}, "C")
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestCompileNoBinaryConfigured(t *testing.T) {
	e := New("")
	if _, err := e.Compile("/src", nil, "C"); err == nil {
		t.Fatalf("expected an error when no binary is configured")
	}
}

func TestCompilePropagatesProcessFailure(t *testing.T) {
	bin := fakeCompiler(t, `echo "boom" 1>&2; exit 1`)
	e := New(bin)

	_, err := e.Compile("/src", nil, "C")
	if err == nil {
		t.Fatalf("expected an error on nonzero exit")
	}
}
