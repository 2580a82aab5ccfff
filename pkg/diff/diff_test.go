package diff

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/grafana/fmt-language-server/pkg/position"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEdits(t *testing.T) {
	testCases := []struct {
		name          string
		before, after string
		expected      []protocol.TextEdit
	}{
		{
			name:     "identical",
			before:   "one\ntwo\nthree",
			after:    "one\ntwo\nthree",
			expected: nil,
		},
		{
			name:   "replace inside a word",
			before: "AAAApiAAA",
			after:  "AAAAparAAA",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 4, 0, 6), NewText: "par"},
			},
		},
		{
			name:   "insert into empty document",
			before: "",
			after:  "hello",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 0, 0, 0), NewText: "hello"},
			},
		},
		{
			name:   "delete whole document",
			before: "hello",
			after:  "",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 0, 0, 5), NewText: ""},
			},
		},
		{
			name:   "add one char",
			before: "one\ntwo\nthree",
			after:  "one\ntwoo\nthree",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(1, 3, 1, 3), NewText: "o"},
			},
		},
		{
			name:   "insert a space after a comma",
			before: "a,b",
			after:  "a, b",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 2, 0, 2), NewText: " "},
			},
		},
		{
			name:   "reindent a line",
			before: "if x:\n  y\n",
			after:  "if x:\n    y\n",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(1, 2, 1, 2), NewText: "  "},
			},
		},
		{
			name:   "columns count utf-8 code units",
			before: "héllo wörld",
			after:  "héllo world",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 8, 0, 10), NewText: "o"},
			},
		},
		{
			name:   "runes sharing a lead byte are replaced whole",
			before: "é",
			after:  "è",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 0, 0, 2), NewText: "è"},
			},
		},
		{
			name:   "rename a camel case word",
			before: "newHTTPServer()",
			after:  "newHTTPClient()",
			expected: []protocol.TextEdit{
				{Range: position.NewProtocolRange(0, 7, 0, 13), NewText: "Client"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TextEdits(tc.before, tc.after)
			assert.Equal(t, tc.expected, got)

			applied, err := ApplyEdits(tc.before, got)
			require.NoError(t, err)
			assert.Equal(t, tc.after, applied)
		})
	}
}

func TestTextEditsRoundTrip(t *testing.T) {
	pairs := []struct{ before, after string }{
		{"", ""},
		{"abc", "xyz"},
		{"abc", "def ghi\njkl"},
		{"\n\n\n", "\n"},
		{"x = 1\ny=2\n", "x = 1\ny = 2\n"},
		{"import os,sys\n\n\n\ndef f( a ):\n  return a\n", "import os\nimport sys\n\n\ndef f(a):\n    return a\n"},
		{"class A :\n\tpass", "class A:\n    pass\n"},
		{"日本語のテキスト", "日本語 の テキスト"},
		{"a\r\nb\r\n", "a\nb\n"},
		{"foo(bar, baz)", "foo(\n    bar,\n    baz,\n)"},
		{strings.Repeat("x = [1, 2, 3]\n", 300), strings.Repeat("x = [1, 2, 3]\n", 150) + "y = 4\n" + strings.Repeat("x = [1,2,3]\n", 150)},
		{"\xff\xfeinvalid", "\xffinvalid\xfe"},
	}

	for _, p := range pairs {
		assertRoundTrip(t, p.before, p.after)
	}
}

func TestTextEditsLargeDocument(t *testing.T) {
	const lines = 300
	edits := TextEdits(strings.Repeat("foo(a,b)\n", lines), strings.Repeat("foo(a, b)\n", lines))

	expected := make([]protocol.TextEdit, 0, lines)
	for line := 0; line < lines; line++ {
		expected = append(expected, protocol.TextEdit{Range: position.NewProtocolRange(line, 6, line, 6), NewText: " "})
	}
	assert.Equal(t, expected, edits)
}

func TestTextEditsManyFunctions(t *testing.T) {
	const functions = 2000
	before := strings.Repeat("def f(x,y):\n    return x+y\n\n", functions)
	after := strings.Repeat("def f(x, y):\n    return x + y\n\n", functions)

	edits := TextEdits(before, after)
	require.Len(t, edits, 3*functions)
	for i, edit := range edits {
		line := 3 * (i / 3)
		switch i % 3 {
		case 0:
			assert.Equal(t, position.NewProtocolRange(line, 8, line, 8), edit.Range)
		case 1:
			assert.Equal(t, position.NewProtocolRange(line+1, 12, line+1, 12), edit.Range)
		case 2:
			assert.Equal(t, position.NewProtocolRange(line+1, 13, line+1, 13), edit.Range)
		}
		assert.Equal(t, " ", edit.NewText)
	}

	applied, err := ApplyEdits(before, edits)
	require.NoError(t, err)
	assert.Equal(t, after, applied)
}

// TestAlignmentIsMinimal compares the split alignment used for large inputs
// with a single myers pass over the same tokens. Punctuation makes every byte
// a token, so the cost of an alignment is the number of bytes it changes.
func TestAlignmentIsMinimal(t *testing.T) {
	const punctuation = "(){}[],;:"
	random := rand.New(rand.NewSource(7))
	generate := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = punctuation[random.Intn(len(punctuation))]
		}
		return string(b)
	}
	mutate := func(s string) string {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			switch random.Intn(12) {
			case 0:
			case 1:
				b.WriteString(generate(1 + random.Intn(3)))
				b.WriteByte(s[i])
			default:
				b.WriteByte(s[i])
			}
		}
		return b.String()
	}
	cost := func(tagged []run) (changed int, before, after string) {
		for _, r := range tagged {
			switch r.tag {
			case tagEqual:
				before += r.text
				after += r.text
			case tagDelete:
				changed += len(r.text)
				before += r.text
			case tagInsert:
				changed += len(r.text)
				after += r.text
			}
		}
		return changed, before, after
	}

	for i := 0; i < 20; i++ {
		before := generate(400)
		after := mutate(before)
		a, b := Tokenize(before), Tokenize(after)
		require.Greater(t, len(a)+len(b), directLimit)

		split := newAligner(a, b)
		split.align(0, len(a), 0, len(b))
		split.out.flush()
		whole := newAligner(a, b)
		whole.direct(0, len(a), 0, len(b))
		whole.out.flush()

		splitCost, gotBefore, gotAfter := cost(split.out.runs)
		wholeCost, _, _ := cost(whole.out.runs)
		assert.Equal(t, wholeCost, splitCost)
		assert.Equal(t, before, gotBefore)
		assert.Equal(t, after, gotAfter)
	}
}

func TestTextEditsLargeRandomRoundTrip(t *testing.T) {
	words := []string{"def", "return", "self", "x", "y", "Foo", "HTTPServer", " ", "    ", "\n", "(", ")", ",", ":", "=", "+", "é"}
	random := rand.New(rand.NewSource(1))
	generate := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(words[random.Intn(len(words))])
		}
		return b.String()
	}

	for i := 0; i < 10; i++ {
		before := generate(1500)
		var after strings.Builder
		for _, token := range Tokenize(before) {
			switch random.Intn(20) {
			case 0:
			case 1:
				after.WriteString(generate(2))
			default:
				after.WriteString(token)
			}
		}
		assertRoundTrip(t, before, after.String())
	}
}

func TestTextEditsRandomRoundTrip(t *testing.T) {
	alphabet := []string{"a", "b", "B", "Q", "_", "1", " ", "  ", "\t", "\n", "\r\n", "(", ")", ",", ":", "é", "日"}
	random := rand.New(rand.NewSource(42))
	generate := func() string {
		var b strings.Builder
		for i := random.Intn(40); i > 0; i-- {
			b.WriteString(alphabet[random.Intn(len(alphabet))])
		}
		return b.String()
	}

	for i := 0; i < 500; i++ {
		before := generate()
		after := generate()
		if random.Intn(3) == 0 {
			// Small mutations look more like formatter output.
			after = before + generate()
		}
		assertRoundTrip(t, before, after)
	}
}

func TestTextEditsIdempotent(t *testing.T) {
	for _, s := range []string{"", "a", "\n", "def f():\n    pass\n", "日本語"} {
		assert.Empty(t, TextEdits(s, s))
	}
}

func TestTextEditsDeterministic(t *testing.T) {
	before := "def f(a,b):\n  return a+b\n\n\n\nprint( f(1,2) )\n"
	after := "def f(a, b):\n    return a + b\n\n\nprint(f(1, 2))\n"
	assert.Equal(t, TextEdits(before, after), TextEdits(before, after))
}

func FuzzTextEdits(f *testing.F) {
	f.Add("", "")
	f.Add("AAAApiAAA", "AAAAparAAA")
	f.Add("hello", "")
	f.Add("def f( a ):\n  pass", "def f(a):\n    pass\n")
	f.Fuzz(func(t *testing.T, before, after string) {
		assertRoundTrip(t, before, after)
	})
}

func assertRoundTrip(t *testing.T, before, after string) {
	t.Helper()

	edits := TextEdits(before, after)
	if before == after {
		assert.Empty(t, edits)
	}
	for i := 1; i < len(edits); i++ {
		assert.False(t, position.Less(edits[i].Range.Start, edits[i-1].Range.End),
			"edit %d starts before edit %d ends: %q -> %q", i, i-1, before, after)
	}

	applied, err := ApplyEdits(before, edits)
	require.NoError(t, err, "%q -> %q", before, after)
	assert.Equal(t, after, applied, "%q -> %q", before, after)
}

func TestApplyEditsErrors(t *testing.T) {
	_, err := ApplyEdits("one\ntwo", []protocol.TextEdit{
		{Range: position.NewProtocolRange(5, 0, 5, 0), NewText: "x"},
	})
	assert.EqualError(t, err, "start 5:0 is outside the document")

	_, err = ApplyEdits("one\ntwo", []protocol.TextEdit{
		{Range: position.NewProtocolRange(0, 0, 0, 3)},
		{Range: position.NewProtocolRange(0, 2, 1, 1)},
	})
	assert.EqualError(t, err, "edits overlap at offset 2")
}

func TestUnified(t *testing.T) {
	got := Unified("file.py", "one\ntwo\nthree\n", "one\n2\nthree\n")
	assert.Contains(t, got, "--- file.py")
	assert.Contains(t, got, "+++ file.py")
	assert.Contains(t, got, "-two")
	assert.Contains(t, got, "+2")
}
