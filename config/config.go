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

// Package config holds the engine's tunables, populated from cmd/sdb's
// gopkg.in/urfave/cli.v1 flags the way the teacher's cmd/gcore wires its
// node config.
package config

import "time"

// Config bundles everything the engine needs that isn't part of the
// domain model proper.
type Config struct {
	// UIListenAddr is the address the UI client channel listens on.
	UIListenAddr string
	// VMAdapterDialAddr is the address of the VM adapter's websocket
	// endpoint.
	VMAdapterDialAddr string
	// PingTimeout bounds a UI client `ping` round trip (§5).
	PingTimeout time.Duration
	// DefaultFastStep is the fast-step hint sent on a missed-predicate
	// step acknowledgement (§4.5) absent an explicit override.
	DefaultFastStep bool
	// LogLevel is one of crit|error|warn|info|debug.
	LogLevel string
}

// Default returns the engine's out-of-the-box configuration.
func Default() Config {
	return Config{
		UIListenAddr:      "127.0.0.1:9229",
		VMAdapterDialAddr: "127.0.0.1:9230",
		PingTimeout:       1 * time.Second,
		DefaultFastStep:   true,
		LogLevel:          "info",
	}
}
