package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grafana/fmt-language-server/pkg/position"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
)

// Unified renders a line based unified diff between before and after.
// It is meant for humans reading logs, not for clients.
func Unified(uri, before, after string) string {
	edits := myers.ComputeEdits(span.URI(uri), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(uri, uri, before, edits))
}

// ApplyEdits applies edits computed against text, all at once, the way an
// LSP client applies the result of a formatting request.
func ApplyEdits(text string, edits []protocol.TextEdit) (string, error) {
	type replacement struct {
		start, end int
		newText    string
	}

	replacements := make([]replacement, 0, len(edits))
	for _, edit := range edits {
		start, ok := position.Offset(text, edit.Range.Start)
		if !ok {
			return "", fmt.Errorf("start %d:%d is outside the document", edit.Range.Start.Line, edit.Range.Start.Character)
		}
		end, ok := position.Offset(text, edit.Range.End)
		if !ok {
			return "", fmt.Errorf("end %d:%d is outside the document", edit.Range.End.Line, edit.Range.End.Character)
		}
		if end < start {
			return "", fmt.Errorf("range %d:%d-%d:%d is inverted", edit.Range.Start.Line, edit.Range.Start.Character, edit.Range.End.Line, edit.Range.End.Character)
		}
		replacements = append(replacements, replacement{start, end, edit.NewText})
	}

	// Stable so that inserts at the same offset keep their relative order.
	sort.SliceStable(replacements, func(i, j int) bool {
		return replacements[i].start < replacements[j].start
	})

	var b strings.Builder
	last := 0
	for _, r := range replacements {
		if r.start < last {
			return "", fmt.Errorf("edits overlap at offset %d", r.start)
		}
		b.WriteString(text[last:r.start])
		b.WriteString(r.newText)
		last = r.end
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
