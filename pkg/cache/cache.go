package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
)

// Errors returned when a caller breaks the document lifecycle contract.
var (
	ErrAlreadyOpen       = errors.New("document is already open")
	ErrNotOpen           = errors.New("document is not open")
	ErrStaleVersion      = errors.New("document version must increase")
	ErrIncrementalChange = errors.New("only full document changes are supported")
	ErrNoChanges         = errors.New("change notification has no content changes")
)

// Document is a snapshot of an open document.
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Text       string
}

// Cache holds the documents the client has open.
// A single lock guards every document; readers share it.
type Cache struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*Document
}

// New returns a document cache.
func New() *Cache {
	return &Cache{
		mu:   sync.RWMutex{},
		docs: make(map[protocol.DocumentURI]*Document),
	}
}

// Open starts tracking a document.
func (c *Cache) Open(item protocol.TextDocumentItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[item.URI]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, item.URI)
	}
	c.docs[item.URI] = &Document{
		URI:        item.URI,
		LanguageID: item.LanguageID,
		Version:    item.Version,
		Text:       item.Text,
	}

	return nil
}

// Get retrieves a snapshot of a document. The snapshot is not affected by
// later changes, so it can be used after the lock is released.
func (c *Cache) Get(uri protocol.DocumentURI) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[uri]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}

	return *doc, nil
}

// ApplyFullChange replaces the text of a document.
// The new version must be greater than the stored one.
func (c *Cache) ApplyFullChange(uri protocol.DocumentURI, version int32, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.replace(uri, version, text)
}

// ApplyChanges applies the content changes of a didChange notification.
// Every change must replace the whole document; if there are several, the
// last one wins. Nothing is applied unless every change is valid.
func (c *Cache) ApplyChanges(uri protocol.DocumentURI, version int32, changes []protocol.TextDocumentContentChangeEvent) error {
	if len(changes) == 0 {
		return fmt.Errorf("%w: %s", ErrNoChanges, uri)
	}
	for i, change := range changes {
		if change.Range != nil || change.RangeLength != 0 {
			return fmt.Errorf("%w: %s: change %d has a range", ErrIncrementalChange, uri, i)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.replace(uri, version, changes[len(changes)-1].Text)
}

func (c *Cache) replace(uri protocol.DocumentURI, version int32, text string) error {
	doc, ok := c.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	if version <= doc.Version {
		return fmt.Errorf("%w: %s: got version %d, have version %d", ErrStaleVersion, uri, version, doc.Version)
	}

	doc.Version = version
	doc.Text = text

	return nil
}

// Close stops tracking a document.
func (c *Cache) Close(uri protocol.DocumentURI) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[uri]; !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	delete(c.docs, uri)

	return nil
}

// Len returns the number of open documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.docs)
}
