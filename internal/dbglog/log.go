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

// Package dbglog is a small leveled, structured logger in the shape of the
// teacher's vendored log package (ctx-carrying, key/value pairs, a handful
// of levels) — reimplemented here because that package's source was not
// part of the retrieved pack.
package dbglog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "crit"
	case LvlError:
		return "error"
	case LvlWarn:
		return "warn"
	case LvlInfo:
		return "info"
	case LvlDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Logger is a named logger carrying a fixed set of context key/value pairs,
// mirroring log.New("module", "step") in the teacher's sources.
type Logger struct {
	ctx []interface{}

	mu    *sync.Mutex
	out   io.Writer
	level Level
}

var root = &Logger{mu: &sync.Mutex{}, out: os.Stderr, level: LvlInfo}

// New returns a child logger of the root logger carrying the given
// key/value context pairs.
func New(ctx ...interface{}) *Logger {
	return root.New(ctx...)
}

// New returns a child logger carrying this logger's context plus ctx.
func (l *Logger) New(ctx ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &Logger{ctx: merged, mu: l.mu, out: l.out, level: l.level}
}

// SetLevel adjusts the minimum level written by this logger and its
// descendants (they share the same mutex/output, not the level field, so
// set it on the root to affect the whole tree).
func (l *Logger) SetLevel(lvl Level) { l.level = lvl }

// SetOutput redirects where log lines are written.
func SetOutput(w io.Writer) {
	root.mu.Lock()
	defer root.mu.Unlock()
	root.out = w
}

// SetRootLevel adjusts the minimum level for every logger descended from
// the package root, the level cmd/sdb's --log-level flag drives.
func SetRootLevel(lvl Level) { root.level = lvl }

// ParseLevel parses one of crit|error|warn|info|debug (§10.3
// config.LogLevel), defaulting to LvlInfo on an unrecognized name.
func ParseLevel(s string) Level {
	switch s {
	case "crit":
		return LvlCrit
	case "error":
		return LvlError
	case "warn":
		return LvlWarn
	case "debug":
		return LvlDebug
	default:
		return LvlInfo
	}
}

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	if lvl > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s [%s] %s", time.Now().Format("15:04:05.000"), lvl, msg)
	all := append(append([]interface{}{}, l.ctx...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(l.out, " %v=%v", all[i], all[i+1])
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Crit(msg string, kv ...interface{})  { l.log(LvlCrit, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LvlError, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LvlWarn, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LvlInfo, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LvlDebug, msg, kv) }
