// Package formatter runs the external formatters whose output the server
// turns into text edits.
package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"

	jsonnetfmt "github.com/google/go-jsonnet/formatter"
	log "github.com/sirupsen/logrus"
)

// ErrNoFormatter is returned when no formatter is registered for a language.
var ErrNoFormatter = errors.New("no formatter registered")

// Formatter rewrites the full text of a document.
// A formatter that has nothing to change returns its input.
type Formatter interface {
	Format(filename, text string) (string, error)
}

// Pipeline runs commands one after the other, feeding the output of each
// command to the next. Every command reads the document on stdin and writes
// the formatted document to stdout.
type Pipeline [][]string

// DefaultPython runs black followed by isort with the black profile.
var DefaultPython = Pipeline{
	{"black", "--quiet", "-"},
	{"isort", "--profile", "black", "-"},
}

func (p Pipeline) Format(filename, text string) (string, error) {
	for _, argv := range p {
		if len(argv) == 0 {
			return "", errors.New("empty formatter command")
		}

		var stdout, stderr bytes.Buffer
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdin = strings.NewReader(text)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		log.Debugf("Running %s on %s", strings.Join(argv, " "), filename)
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("%s: %w: %s", argv[0], err, msg)
			}
			return "", fmt.Errorf("%s: %w", argv[0], err)
		}
		text = stdout.String()
	}

	return text, nil
}

// Jsonnet formats Jsonnet with the go-jsonnet formatter.
type Jsonnet struct {
	Options jsonnetfmt.Options
}

func (j Jsonnet) Format(filename, text string) (string, error) {
	return jsonnetfmt.Format(filename, text, j.Options)
}

// Registry maps language IDs to formatters. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// NewRegistry returns a registry with the default formatters.
func NewRegistry() *Registry {
	return &Registry{
		formatters: map[string]Formatter{
			"python":  DefaultPython,
			"jsonnet": Jsonnet{Options: jsonnetfmt.DefaultOptions()},
		},
	}
}

// Register sets the formatter for a language, replacing any previous one.
func (r *Registry) Register(languageID string, f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.formatters[languageID] = f
}

// Lookup returns the formatter for a language.
func (r *Registry) Lookup(languageID string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[languageID]
	if !ok {
		return nil, fmt.Errorf("%w for language %q", ErrNoFormatter, languageID)
	}
	return f, nil
}

// Languages returns the sorted language IDs that have a formatter.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	languages := make([]string, 0, len(r.formatters))
	for languageID := range r.formatters {
		languages = append(languages, languageID)
	}
	sort.Strings(languages)
	return languages
}
