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

// sdb is the debugger engine's server process: it dials the VM adapter,
// accepts one UI client connection, and wires the two through a Session
// (§2, §6).
package main

import (
	"fmt"
	"net/http"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/core-coin/sdb/compilerexec"
	"github.com/core-coin/sdb/config"
	"github.com/core-coin/sdb/engine"
	"github.com/core-coin/sdb/internal/dbglog"
	"github.com/core-coin/sdb/transport"
)

var log = dbglog.New("pkg", "cmd/sdb")

var (
	uiAddrFlag = cli.StringFlag{
		Name:  "ui-addr",
		Usage: "address to listen on for the UI client channel",
		Value: config.Default().UIListenAddr,
	}
	vmAddrFlag = cli.StringFlag{
		Name:  "vm-addr",
		Usage: "address of the VM adapter's websocket endpoint to dial",
		Value: config.Default().VMAdapterDialAddr,
	}
	pingTimeoutFlag = cli.DurationFlag{
		Name:  "ping-timeout",
		Usage: "timeout for a UI client ping round trip (§5)",
		Value: config.Default().PingTimeout,
	}
	fastStepFlag = cli.BoolTFlag{
		Name:  "fast-step",
		Usage: "default fastStep hint sent on a missed-predicate step acknowledgement",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "one of crit|error|warn|info|debug",
		Value: config.Default().LogLevel,
	}
	compilerFlag = cli.StringFlag{
		Name:  "compiler",
		Usage: "path to the external compiler binary the evaluator shells out to (§4.6)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "sdb"
	app.Usage = "source-level debugger engine for stack-VM contracts"
	app.Flags = []cli.Flag{uiAddrFlag, vmAddrFlag, pingTimeoutFlag, fastStepFlag, logLevelFlag, compilerFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := config.Config{
		UIListenAddr:      ctx.String(uiAddrFlag.Name),
		VMAdapterDialAddr: ctx.String(vmAddrFlag.Name),
		PingTimeout:       ctx.Duration(pingTimeoutFlag.Name),
		DefaultFastStep:   ctx.BoolT(fastStepFlag.Name),
		LogLevel:          ctx.String(logLevelFlag.Name),
	}
	dbglog.SetRootLevel(dbglog.ParseLevel(cfg.LogLevel))

	log.Info("dialing VM adapter", "addr", cfg.VMAdapterDialAddr)
	vmChannel, err := transport.DialChannel(cfg.VMAdapterDialAddr)
	if err != nil {
		return fmt.Errorf("dial VM adapter: %w", err)
	}
	defer vmChannel.Close()

	compiler := compilerexec.New(ctx.String(compilerFlag.Name))

	uiConnected := make(chan *transport.Channel, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ch, err := transport.NewChannel(w, r)
		if err != nil {
			log.Error("UI upgrade failed", "err", err)
			return
		}
		select {
		case uiConnected <- ch:
		default:
			log.Warn("second UI client rejected; only one session is served at a time")
			ch.Close()
		}
	})

	server := &http.Server{Addr: cfg.UIListenAddr, Handler: mux}
	go func() {
		log.Info("listening for UI client", "addr", cfg.UIListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("UI listener stopped", "err", err)
		}
	}()

	uiChannel := <-uiConnected
	defer uiChannel.Close()

	session := engine.New(cfg, vmChannel, uiChannel, compiler)
	log.Info("session ready", "pingTimeout", cfg.PingTimeout.String())
	session.Run(vmChannel, uiChannel)
	return nil
}
