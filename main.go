// fmt-language-server: A Language Server Protocol server for source formatters.
// Copyright (C) 2021 Jack Baldry

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/grafana/fmt-language-server/pkg/server"
	"github.com/grafana/fmt-language-server/pkg/utils"
	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	log "github.com/sirupsen/logrus"
)

const name = "fmt-language-server"

// version is replaced at build time with -ldflags.
var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	logLevel := flag.String("log-level", "info", "Log level: panic, fatal, error, warn, info, debug or trace")
	tcpAddr := flag.String("tcp", "", "Serve a single client on this TCP address (e.g. 127.0.0.1:7325) instead of stdio")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s version %s\n", name, version)
		return
	}

	// stdout carries the protocol.
	log.SetOutput(os.Stderr)
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)

	conn, err := connect(*tcpAddr)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	stream := jsonrpc2.NewHeaderStream(conn)
	rpcConn := jsonrpc2.NewConn(stream)
	client := protocol.ClientDispatcher(rpcConn)

	s := server.NewServer(name, version, client, server.Configuration{})
	rpcConn.Go(ctx, protocol.Handlers(s.Handler()))
	<-rpcConn.Done()
	if err := rpcConn.Err(); err != nil {
		log.Errorf("Connection closed: %v", err)
	}
	if !s.ShutdownRequested() {
		os.Exit(1)
	}
}

// connect returns stdio, or the first client to connect to addr.
func connect(addr string) (net.Conn, error) {
	if addr == "" {
		return utils.NewStdio(nil, nil), nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer listener.Close()

	log.Infof("Waiting for a client on %s", listener.Addr())
	conn, err := listener.Accept()
	if err != nil {
		return nil, fmt.Errorf("accepting a client on %s: %w", addr, err)
	}
	log.Infof("Client connected from %s", conn.RemoteAddr())
	return conn, nil
}
