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

// Package compilerexec is the one concrete implementation of eval.Compiler
// this module ships: it shells out to an external compiler binary, the
// "on-disk compiler toolchain" §1 calls out of scope and treats as an
// external collaborator. The evaluator only needs *some* Compiler to
// synthesize and recompile its wrapper function against (§4.6); this is
// the seam a real deployment wires to solc/whatever toolchain the target
// VM uses.
package compilerexec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/internal/dbglog"
)

var log = dbglog.New("pkg", "compilerexec")

// Exec compiles by invoking an external binary: <bin> --contract <name>
// with the full multi-file source set piped in as JSON on stdin
// (`{"sourceRootPath":..., "sources": {path: source}}`), expecting a
// single JSON object on stdout shaped like compilerOutput below.
type Exec struct {
	Bin string
}

// New returns an Exec compiler invoking bin.
func New(bin string) *Exec { return &Exec{Bin: bin} }

type compilerInput struct {
	SourceRootPath string            `json:"sourceRootPath"`
	Sources        map[string]string `json:"sources"`
	Contract       string            `json:"contract"`
}

type compilerOutput struct {
	CreationCode  string   `json:"creationCode"`
	RuntimeCode   string   `json:"runtimeCode"`
	RuntimeSrcMap string   `json:"runtimeSourceMap"`
	AST           ast.Node `json:"ast"`
	Error         string   `json:"error"`
}

// Compile implements eval.Compiler.
func (e *Exec) Compile(sourceRootPath string, sources map[string]string, contractName string) (eval.CompileResult, error) {
	if e.Bin == "" {
		return eval.CompileResult{}, fmt.Errorf("compilerexec: no compiler binary configured")
	}
	input, err := json.Marshal(compilerInput{SourceRootPath: sourceRootPath, Sources: sources, Contract: contractName})
	if err != nil {
		return eval.CompileResult{}, fmt.Errorf("compilerexec: encode input: %w", err)
	}

	cmd := exec.Command(e.Bin, "--contract", contractName)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		log.Debug("compiler invocation failed", "contract", contractName, "err", msg)
		return eval.CompileResult{}, fmt.Errorf("%s", msg)
	}

	var out compilerOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return eval.CompileResult{}, fmt.Errorf("compilerexec: decode output: %w", err)
	}
	if out.Error != "" {
		return eval.CompileResult{}, fmt.Errorf("%s", out.Error)
	}

	node := out.AST
	return eval.CompileResult{
		CreationCode:  decodeHex(out.CreationCode),
		RuntimeCode:   decodeHex(out.RuntimeCode),
		RuntimeSrcMap: out.RuntimeSrcMap,
		AST:           &node,
	}, nil
}

func decodeHex(s string) []byte {
	b, err := hex.DecodeString(common.TrimPrefix0x(s))
	if err != nil {
		return nil
	}
	return b
}
