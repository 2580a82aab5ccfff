package position

import (
	"strings"

	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
)

// NewProtocolRange returns the range between two zero-based line and column
// pairs.
func NewProtocolRange(startLine, startCharacter, endLine, endCharacter int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Character: uint32(startCharacter),
			Line:      uint32(startLine),
		},
		End: protocol.Position{
			Character: uint32(endCharacter),
			Line:      uint32(endLine),
		},
	}
}

// Less reports whether a comes strictly before b.
func Less(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// Offset converts a position into a byte offset into text.
// The second return value is false if the position lies outside text.
func Offset(text string, p protocol.Position) (int, bool) {
	line, offset := uint32(0), 0
	for line < p.Line {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return 0, false
		}
		offset += i + 1
		line++
	}
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text) - offset
	}
	if int(p.Character) > end {
		return 0, false
	}
	return offset + int(p.Character), true
}
