package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/grafana/fmt-language-server/pkg/cache"
	"github.com/grafana/fmt-language-server/pkg/formatter"
	"github.com/grafana/fmt-language-server/pkg/utils"
	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	log "github.com/sirupsen/logrus"
)

const (
	errorRetrievingDocument = "unable to retrieve document from the cache"
	errorUpdatingDocument   = "unable to update document in the cache"

	// positionEncodingUTF8 is the LSP 3.17 position encoding this server
	// reports. Columns count UTF-8 code units.
	positionEncodingUTF8 = "utf-8"
)

// NewServer returns a new language server.
func NewServer(name, version string, client protocol.ClientCloser, configuration Configuration) *Server {
	server := &Server{
		name:       name,
		version:    version,
		cache:      cache.New(),
		formatters: formatter.NewRegistry(),
		client:     client,
	}
	for languageID, f := range configuration.Formatters {
		server.formatters.Register(languageID, f)
	}

	return server
}

// Server is the formatting language server.
type Server struct {
	name, version string

	cache      *cache.Cache
	formatters *formatter.Registry
	client     protocol.ClientCloser

	shutdown atomic.Bool
}

var _ protocol.Server = (*Server)(nil)

func (s *Server) Initialize(ctx context.Context, params *protocol.ParamInitialize) (*protocol.InitializeResult, error) {
	log.Infof("Initializing %s version %s", s.name, s.version)
	if params.ClientInfo.Name != "" {
		log.Infof("Client is %s %s", params.ClientInfo.Name, params.ClientInfo.Version)
	} else {
		log.Infoln("Client did not identify itself")
	}

	if params.InitializationOptions != nil {
		if err := s.applySettings(params.InitializationOptions); err != nil {
			return nil, err
		}
	}
	log.Infof("Formatting languages: %v", s.formatters.Languages())

	result := &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			DocumentFormattingProvider: true,
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				Change:    protocol.Full,
				OpenClose: true,
			},
		},
	}
	result.ServerInfo.Name = s.name
	result.ServerInfo.Version = s.version
	return result, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	return s.client.LogMessage(ctx, &protocol.LogMessageParams{
		Type:    protocol.Info,
		Message: "server initialized!",
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdown.Store(true)
	log.Infof("Shutting down with %d open documents", s.cache.Len())
	return nil
}

// ShutdownRequested reports whether the client sent shutdown. A process
// leaving on exit without it should report failure.
func (s *Server) ShutdownRequested() bool {
	return s.shutdown.Load()
}

func (s *Server) Exit(ctx context.Context) error {
	if !s.ShutdownRequested() {
		log.Warnln("Exit without a prior shutdown request")
	}
	log.Infoln("Goodbye")
	return s.client.Close()
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("DidOpen: %s version %d", params.TextDocument.URI, params.TextDocument.Version)

	if err := s.cache.Open(params.TextDocument); err != nil {
		return s.contractViolation(ctx, "DidOpen", err)
	}
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("DidChange: %s version %d", params.TextDocument.URI, params.TextDocument.Version)

	if err := s.cache.ApplyChanges(params.TextDocument.URI, params.TextDocument.Version, params.ContentChanges); err != nil {
		return s.contractViolation(ctx, "DidChange", fmt.Errorf("%s: %w", errorUpdatingDocument, err))
	}
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debugf("DidClose: %s", params.TextDocument.URI)

	if err := s.cache.Close(params.TextDocument.URI); err != nil {
		return s.contractViolation(ctx, "DidClose", err)
	}
	return nil
}

// contractViolation reports a broken document lifecycle. The notification is
// rejected as a whole and the client is told, since it cannot see the error
// of a notification otherwise.
func (s *Server) contractViolation(ctx context.Context, method string, err error) error {
	err = utils.LogErrorf("%s: %w: %v", method, jsonrpc2.ErrInvalidRequest, err)
	if showErr := s.client.ShowMessage(ctx, &protocol.ShowMessageParams{
		Type:    protocol.Error,
		Message: err.Error(),
	}); showErr != nil {
		log.Warnf("%s: unable to show error to the client: %v", method, showErr)
	}
	return err
}
