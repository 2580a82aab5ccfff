package server

import (
	"context"
	"time"

	"github.com/grafana/fmt-language-server/pkg/diff"
	"github.com/grafana/fmt-language-server/pkg/utils"
	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	log "github.com/sirupsen/logrus"
)

// Formatting formats a snapshot of the document and returns the edits that
// turn the snapshot into the formatted text. The cache is not locked while
// the formatter runs, and it is never updated by this request.
func (s *Server) Formatting(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, err := s.cache.Get(params.TextDocument.URI)
	if err != nil {
		return nil, utils.LogErrorf("Formatting: %w: %s: %v", jsonrpc2.ErrInvalidRequest, errorRetrievingDocument, err)
	}

	f, err := s.formatters.Lookup(doc.LanguageID)
	if err != nil {
		return nil, utils.LogErrorf("Formatting: %w: %v", jsonrpc2.ErrInvalidRequest, err)
	}

	start := time.Now()
	formatted, err := f.Format(doc.URI.SpanURI().Filename(), doc.Text)
	if err != nil {
		return nil, utils.LogErrorf("Formatting: %w: error formatting document: %v", jsonrpc2.ErrInternal, err)
	}

	edits := diff.TextEdits(doc.Text, formatted)
	log.WithFields(log.Fields{
		"uri":     doc.URI,
		"version": doc.Version,
		"edits":   len(edits),
	}).Infof("Formatted in %dms", time.Since(start).Milliseconds())

	if len(edits) == 0 {
		return []protocol.TextEdit{}, nil
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("Formatting diff:\n%s", diff.Unified(string(doc.URI), doc.Text, formatted))
	}

	return edits, nil
}
