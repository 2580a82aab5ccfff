package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
)

// capabilities adds the position encoding, which the protocol package
// predates, to the server capabilities.
type capabilities struct {
	protocol.ServerCapabilities
	PositionEncoding string `json:"positionEncoding,omitempty"`
}

// initializeResult shadows the capabilities of the embedded result.
type initializeResult struct {
	*protocol.InitializeResult
	Capabilities capabilities `json:"capabilities"`
}

// Handler serves the server with protocol.ServerHandler. initialize and exit
// are intercepted, and every other message is rejected once shutdown has been
// requested.
func (s *Server) Handler() jsonrpc2.Handler {
	next := protocol.ServerHandler(s, jsonrpc2.MethodNotFound)
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case "initialize":
			return s.initialize(ctx, reply, req)
		case "exit":
			// Notifications get no response on the wire, but the reply must
			// still happen before the connection is closed.
			if err := reply(ctx, nil, nil); err != nil {
				return err
			}
			return s.Exit(ctx)
		}

		if s.ShutdownRequested() {
			return reply(ctx, nil, fmt.Errorf("%w: %s after shutdown", jsonrpc2.ErrInvalidRequest, req.Method()))
		}
		return next(ctx, reply, req)
	}
}

func (s *Server) initialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ParamInitialize
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		// Clients disagree on the types of some optional fields.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return reply(ctx, nil, fmt.Errorf("%w: %s", jsonrpc2.ErrParse, err))
		}
	}

	result, err := s.Initialize(ctx, &params)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, initializeResult{
		InitializeResult: result,
		Capabilities: capabilities{
			ServerCapabilities: result.Capabilities,
			PositionEncoding:   positionEncodingUTF8,
		},
	}, nil)
}
