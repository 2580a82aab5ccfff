// Package diff translates a full-text rewrite of a document into an ordered
// list of text edits anchored to the original document.
package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/grafana/fmt-language-server/pkg/position"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
)

type tag int

const (
	tagEqual tag = iota
	tagDelete
	tagInsert
)

// run is a contiguous piece of text sharing one diff tag.
type run struct {
	tag  tag
	text string
}

// TextEdits returns the edits that turn before into after. All ranges are
// expressed in the coordinates of before and the edits are meant to be
// applied together, not one after the other.
// Identical inputs produce no edits.
func TextEdits(before, after string) []protocol.TextEdit {
	if before == after {
		return nil
	}
	return toTextEdits(runs(Tokenize(before), Tokenize(after)))
}

func toTextEdits(tagged []run) []protocol.TextEdit {
	var (
		edits  []protocol.TextEdit
		cursor position.Cursor
	)
	for i := 0; i < len(tagged); i++ {
		r := tagged[i]
		switch r.tag {
		case tagEqual:
			cursor.Advance(r.text)
		case tagDelete:
			if i+1 < len(tagged) && tagged[i+1].tag == tagInsert {
				i++
				if edit, ok := replace(&cursor, r.text, tagged[i].text); ok {
					edits = append(edits, edit)
				}
				continue
			}
			start := cursor.Position()
			cursor.Advance(r.text)
			edits = append(edits, protocol.TextEdit{
				Range: protocol.Range{Start: start, End: cursor.Position()},
			})
		case tagInsert:
			start := cursor.Position()
			edits = append(edits, protocol.TextEdit{
				Range:   protocol.Range{Start: start, End: start},
				NewText: r.text,
			})
		}
	}
	return edits
}

// replace returns the edit replacing old with text at the cursor, narrowed to
// the bytes that differ, and moves the cursor past old.
func replace(cursor *position.Cursor, old, text string) (protocol.TextEdit, bool) {
	prefix, suffix := common(old, text)
	cursor.Advance(old[:prefix])
	start := cursor.Position()
	cursor.Advance(old[prefix : len(old)-suffix])
	end := cursor.Position()
	cursor.Advance(old[len(old)-suffix:])

	edit := protocol.TextEdit{
		Range:   protocol.Range{Start: start, End: end},
		NewText: text[prefix : len(text)-suffix],
	}
	return edit, start != end || edit.NewText != ""
}

// common returns the lengths of the longest common prefix and suffix of a and
// b that end and start on rune boundaries and do not overlap.
func common(a, b string) (prefix, suffix int) {
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	for prefix > 0 && (midRune(a, prefix) || midRune(b, prefix)) {
		prefix--
	}

	a, b = a[prefix:], b[prefix:]
	for suffix < len(a) && suffix < len(b) && a[len(a)-suffix-1] == b[len(b)-suffix-1] {
		suffix++
	}
	for suffix > 0 && (midRune(a, len(a)-suffix) || midRune(b, len(b)-suffix)) {
		suffix--
	}
	return prefix, suffix
}

func midRune(s string, i int) bool {
	return i < len(s) && !utf8.RuneStart(s[i])
}

func join(tokens []string) string {
	return strings.Join(tokens, "")
}
