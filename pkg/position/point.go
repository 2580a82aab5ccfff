package position

import "github.com/jdbaldry/go-language-server-protocol/lsp/protocol"

// Cursor tracks a zero-based position over text as it is consumed.
// Columns count UTF-8 code units, matching the "utf-8" position encoding
// advertised to clients.
type Cursor struct {
	Line, Column uint32
}

// Advance moves the cursor past text one byte at a time.
func (c *Cursor) Advance(text string) {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			c.Line++
			c.Column = 0
		} else {
			c.Column++
		}
	}
}

// Position returns the protocol form of the cursor.
func (c Cursor) Position() protocol.Position {
	return protocol.Position{Line: c.Line, Character: c.Column}
}
