package utils

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func TestStdio(t *testing.T) {
	var out bytes.Buffer
	s := NewStdio(io.NopCloser(strings.NewReader("in")), nopWriteCloser{&out})

	b := make([]byte, 2)
	n, err := s.Read(b)
	require.NoError(t, err)
	assert.Equal(t, "in", string(b[:n]))

	_, err = s.Write([]byte("out"))
	require.NoError(t, err)
	assert.Equal(t, "out", out.String())

	assert.Equal(t, "Stdio", s.LocalAddr().Network())
	assert.NoError(t, s.Close())
}

func TestLogErrorf(t *testing.T) {
	cause := errors.New("boom")
	err := LogErrorf("Formatting: %s: %w", "unable to format", cause)
	assert.EqualError(t, err, "Formatting: unable to format: boom")
	assert.ErrorIs(t, err, cause)
}
