package server

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/grafana/fmt-language-server/pkg/formatter"
	"github.com/grafana/fmt-language-server/pkg/utils"
	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testURI = protocol.DocumentURI("file:///tmp/test.py")

type fakeWriterCloser struct {
	io.Writer
}

func (fakeWriterCloser) Close() error {
	return nil
}

// formatterFunc adapts a function to formatter.Formatter.
type formatterFunc func(filename, text string) (string, error)

func (f formatterFunc) Format(filename, text string) (string, error) {
	return f(filename, text)
}

// upperFormatter uppercases the document.
var upperFormatter = formatterFunc(func(_, text string) (string, error) {
	return strings.ToUpper(text), nil
})

var errBrokenFormatter = errors.New("cannot parse input")

var brokenFormatter = formatterFunc(func(string, string) (string, error) {
	return "", errBrokenFormatter
})

func init() {
	logrus.SetLevel(logrus.WarnLevel)
}

func testServer(t *testing.T, formatters map[string]formatter.Formatter) (server *Server) {
	t.Helper()
	return testServerWithOutput(t, formatters, fakeWriterCloser{io.Discard})
}

func testServerWithOutput(t *testing.T, formatters map[string]formatter.Formatter, out io.WriteCloser) (server *Server) {
	t.Helper()

	stdio := utils.NewStdio(io.NopCloser(strings.NewReader("")), out)
	stream := jsonrpc2.NewHeaderStream(stdio)
	conn := jsonrpc2.NewConn(stream)
	client := protocol.ClientDispatcher(conn)
	server = NewServer("fmt-language-server", "dev", client, Configuration{
		Formatters: formatters,
	})
	_, err := server.Initialize(context.Background(), &protocol.ParamInitialize{})
	require.NoError(t, err)

	return server
}

func serverOpenTestDocument(t require.TestingT, server *Server, languageID, text string) protocol.DocumentURI {
	err := server.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			Text:       text,
			Version:    1,
			LanguageID: languageID,
		},
	})
	require.NoError(t, err)

	return testURI
}

func didChangeParams(uri protocol.DocumentURI, version int32, text string) *protocol.DidChangeTextDocumentParams {
	params := &protocol.DidChangeTextDocumentParams{
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	}
	params.TextDocument.URI = uri
	params.TextDocument.Version = version
	return params
}
