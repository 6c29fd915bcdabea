// Copyright 2016 by the Authors
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

// Package dbgerrors implements the error taxonomy of §7: typed error
// values so callers can decide, via errors.As, whether an error is locally
// recoverable or fatal.
package dbgerrors

import "fmt"

// ProtocolError: unknown request type, mis-keyed id, malformed JSON.
type ProtocolError struct{ Reason string }

func (e *ProtocolError) Error() string { return "protocol: " + e.Reason }

// ModelGapError: event for an unlinked address, or a pc with no source
// mapping. Never a stop candidate for the step engine.
type ModelGapError struct{ Reason string }

func (e *ModelGapError) Error() string { return "model gap: " + e.Reason }

// ResolutionError: a breakpoint could not be bound to any pc.
type ResolutionError struct {
	Path string
	Line int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution: no pc for %s:%d", e.Path, e.Line)
}

// EvaluatorError: a compile error the evaluator could not pattern-match
// into a fix. The VM is guaranteed untouched when this is returned.
type EvaluatorError struct{ Reason string }

func (e *EvaluatorError) Error() string { return "evaluator: " + e.Reason }

// DecodingError is never returned to callers directly — decoding failures
// resolve to the literal string "(invalid value)" per §7.5 — but is kept
// so internal callers can distinguish the condition from a genuine bug.
type DecodingError struct{ Reason string }

func (e *DecodingError) Error() string { return "decode: " + e.Reason }

// FatalError: VM adapter disconnect. The only kind that surfaces to the
// user as termination (an `end` event).
type FatalError struct{ Reason string }

func (e *FatalError) Error() string { return "fatal: " + e.Reason }
